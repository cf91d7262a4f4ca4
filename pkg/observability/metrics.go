package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes operational metrics to CloudWatch. All methods are safe
// on a nil receiver so metrics stay optional at every call site: a service
// built without metrics just records nothing.
//
// Publishing is fire-and-forget; a metric that fails to ship is logged and
// dropped, never propagated to the caller.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a Metrics recorder publishing under the given namespace
func NewMetrics(client *cloudwatch.Client, namespace string, logger *zap.Logger) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordDuration publishes a millisecond timing metric
func (m *Metrics) RecordDuration(ctx context.Context, name string, d time.Duration) {
	if m == nil {
		return
	}
	m.put(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds)
}

// RecordCount publishes a count metric
func (m *Metrics) RecordCount(ctx context.Context, name string, value float64) {
	if m == nil {
		return
	}
	m.put(ctx, name, value, types.StandardUnitCount)
}

func (m *Metrics) put(ctx context.Context, name string, value float64, unit types.StandardUnit) {
	if m.client == nil {
		return
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
			},
		},
	})
	if err != nil && m.logger != nil {
		m.logger.Debug("Failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}
