package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func TestNewClientDefaults(t *testing.T) {
	c, ok := NewClient(&fakeLogger{}).(*client)
	require.True(t, ok)

	assert.Equal(t, DefaultTimeout, c.config.Timeout)
	assert.Equal(t, DefaultMaxAttempts, c.config.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, c.config.RetryDelay)
	assert.Equal(t, DefaultMaxPayloadLogBytes, c.config.MaxPayloadLogBytes)
	assert.Equal(t, HeaderXRequestID, c.config.TraceIDHeader)
	assert.False(t, c.config.FollowRedirects)
	assert.Nil(t, c.limiter)
	assert.NotSame(t, c.followClient, c.directClient)
	assert.Same(t, c.directClient, c.clientFor(&requestPlan{followRedirects: false}))
	assert.Same(t, c.followClient, c.clientFor(&requestPlan{followRedirects: true}))

	assert.Equal(t, http.ErrUseLastResponse, c.directClient.CheckRedirect(nil, nil))
	assert.Nil(t, c.followClient.CheckRedirect)
	assert.Zero(t, c.directClient.Timeout, "timeouts are per attempt")

	_, isConstant := c.newBackOff().(*backoff.ConstantBackOff)
	assert.True(t, isConstant)
}

func TestBuilderNormalizesConfig(t *testing.T) {
	c := NewBuilder(&fakeLogger{}).
		WithRetries(0, -time.Second).
		WithTraceIDHeader("").
		WithTraceIDGenerator(nil).
		WithPayloadLogging(true, 0).
		WithRateLimit(5, 0).
		Build().(*client)

	assert.Equal(t, DefaultMaxAttempts, c.config.MaxAttempts)
	assert.Zero(t, c.config.RetryDelay)
	assert.Equal(t, HeaderXRequestID, c.config.TraceIDHeader)
	assert.NotNil(t, c.config.NewTraceID)
	assert.True(t, c.config.LogPayloads)
	assert.Equal(t, DefaultMaxPayloadLogBytes, c.config.MaxPayloadLogBytes)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestBuilderIsolatesBuiltClients(t *testing.T) {
	b := NewBuilder(&fakeLogger{}).WithTimeout(time.Second)
	first := b.Build().(*client)
	b.WithTimeout(2 * time.Second)
	second := b.Build().(*client)

	assert.Equal(t, time.Second, first.config.Timeout)
	assert.Equal(t, 2*time.Second, second.config.Timeout)
}

func TestBuilderDoesNotShareMutableState(t *testing.T) {
	noop := func(context.Context, *http.Request) error { return nil }
	b := NewBuilder(&fakeLogger{}).
		WithDefaultHeader("X-Grid-Tenant", "qa").
		WithBasicAuth("grid", "key").
		WithRequestInterceptor(noop)
	built := b.Build().(*client)

	b.WithDefaultHeader("X-Grid-Tenant", "prod").
		WithDefaultHeader("X-Extra", "1").
		WithBasicAuth("other", "secret").
		WithRequestInterceptor(noop).
		WithResponseInterceptor(func(context.Context, *http.Request, *http.Response) error { return nil })

	assert.Equal(t, map[string]string{"X-Grid-Tenant": "qa"}, built.config.DefaultHeaders)
	assert.Equal(t, &BasicAuth{Username: "grid", Password: "key"}, built.config.BasicAuth)
	assert.Len(t, built.requestInterceptors, 1)
	assert.Empty(t, built.responseInterceptors)

	plan, err := built.buildPlan(http.MethodGet, "http://grid:4444/status", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "qa", plan.headers.Get("X-Grid-Tenant"))
	assert.Empty(t, plan.headers.Get("X-Extra"))
}

func TestBuilderTransport(t *testing.T) {
	t.Run("insecure clone", func(t *testing.T) {
		c := NewBuilder(&fakeLogger{}).WithInsecureSkipVerify(true).Build().(*client)
		rt, ok := c.directClient.Transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, rt.TLSClientConfig.InsecureSkipVerify)
		assert.NotSame(t, http.DefaultTransport, rt)
	})

	t.Run("custom transport kept", func(t *testing.T) {
		custom := &failingTransport{}
		c := NewBuilder(&fakeLogger{}).WithTransport(custom).Build().(*client)
		assert.Same(t, custom, c.directClient.Transport)
		assert.Same(t, custom, c.followClient.Transport)
	})

	t.Run("w3c wraps with otelhttp", func(t *testing.T) {
		c := NewBuilder(&fakeLogger{}).WithW3CTrace(true).Build().(*client)
		_, ok := c.directClient.Transport.(*otelhttp.Transport)
		assert.True(t, ok)
	})

	t.Run("custom backoff", func(t *testing.T) {
		policy := backoff.NewExponentialBackOff()
		c := NewBuilder(&fakeLogger{}).WithBackOff(policy).Build().(*client)
		assert.Same(t, policy, c.newBackOff())
	})
}
