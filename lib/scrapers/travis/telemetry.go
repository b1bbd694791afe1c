package travis

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("countytax.lib.scrapers.travis")
