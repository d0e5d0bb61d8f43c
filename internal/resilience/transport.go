package resilience

import "net/http"

// Transport wraps a RoundTripper with a circuit breaker. Transport-level
// errors and 5xx responses count as failures; everything else, including
// 4xx rejections, counts as success since the endpoint is reachable.
type Transport struct {
	Base    http.RoundTripper
	Breaker *Breaker
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Breaker == nil {
		return base.RoundTrip(req)
	}

	if !t.Breaker.Allow() {
		return nil, ErrOpenCircuit
	}

	resp, err := base.RoundTrip(req)
	success := err == nil && resp.StatusCode < 500
	t.Breaker.Report(success)
	return resp, err
}
