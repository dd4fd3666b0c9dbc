package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 10*time.Second, p.NextDelay(5), "задержка упирается в потолок")
	assert.Equal(t, 10*time.Second, p.NextDelay(20))
}

func TestRetryPolicyDefaults(t *testing.T) {
	var p RetryPolicy

	assert.Equal(t, time.Second, p.NextDelay(0), "нулевая попытка трактуется как первая")
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
}
