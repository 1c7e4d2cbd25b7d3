package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Chipwave/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the slice of the CloudWatch client we call
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
	}, nil
}

// Enabled reports whether metrics are shipped
func (m *Client) Enabled() bool {
	return m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := []types.Dimension{
			{
				Name:  aws.String("Endpoint"),
				Value: aws.String(endpoint),
			},
			{
				Name:  aws.String("Environment"),
				Value: aws.String(m.environment),
			},
		}

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "APILatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	}()
}

// RecordRender records render duration and sample counts
func (m *Client) RecordRender(stats RenderStats) {
	if !m.enabled {
		return
	}

	go m.putRender(context.Background(), stats)
}

func (m *Client) putRender(ctx context.Context, stats RenderStats) {
	dimensions := []types.Dimension{
		{
			Name:  aws.String("Source"),
			Value: aws.String(stats.Source),
		},
		{
			Name:  aws.String("Success"),
			Value: aws.String(boolToString(stats.Success)),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}

	durationMs := float64(stats.Duration.Milliseconds())
	if err := m.putMetric(ctx, "RenderDuration", durationMs, types.StandardUnitMilliseconds, dimensions); err != nil {
		log.Printf("Failed to record RenderDuration metric: %v", err)
	}
	if !stats.Success {
		return
	}
	if err := m.putMetric(ctx, "RenderedSamples", float64(stats.Samples), types.StandardUnitCount, dimensions); err != nil {
		log.Printf("Failed to record RenderedSamples metric: %v", err)
	}
	if stats.ClippedSamples > 0 {
		if err := m.putMetric(ctx, "ClippedSamples", float64(stats.ClippedSamples), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record ClippedSamples metric: %v", err)
		}
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
