package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type MetricsSuite struct {
	suite.Suite
	registry *prometheus.Registry
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsSuite))
}

func (s *MetricsSuite) SetupTest() {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		ErrorsTotal,
	)
}

func (s *MetricsSuite) TearDownTest() {
	s.registry.Unregister(RequestsTotal)
	s.registry.Unregister(RequestDurationSeconds)
	s.registry.Unregister(ErrorsTotal)
	RequestsTotal.Reset()
	ErrorsTotal.Reset()
}

func (s *MetricsSuite) TestRequestsTotal() {
	RequestsTotal.WithLabelValues("query", "200").Inc()
	RequestsTotal.WithLabelValues("query", "200").Inc()
	RequestsTotal.WithLabelValues("mutation", "400").Inc()

	families, err := s.registry.Gather()
	s.Require().NoError(err)

	for _, f := range families {
		if f.GetName() != "gqlbind_graphql_requests_total" {
			continue
		}
		s.Len(f.GetMetric(), 2)
		return
	}
	s.Fail("metric not gathered")
}

func (s *MetricsSuite) TestErrorsTotal() {
	ErrorsTotal.WithLabelValues("client").Inc()
	ErrorsTotal.WithLabelValues("server").Inc()

	families, err := s.registry.Gather()
	s.Require().NoError(err)

	var found bool
	for _, f := range families {
		if f.GetName() == "gqlbind_graphql_errors_total" {
			found = true
			s.Len(f.GetMetric(), 2)
		}
	}
	s.True(found)
}
