package fairfax

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("countytax.lib.scrapers.fairfax")
