package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/course-progress-server/pkg/logger"
)

type countingJob struct {
	runs atomic.Int32
	fail bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Execute(context.Context) error {
	j.runs.Add(1)
	if j.fail {
		panic("job blew up")
	}
	return nil
}

func TestSchedulerRunsUntilStopped(t *testing.T) {
	job := &countingJob{}
	s := NewScheduler(logger.Discard())
	s.AddJob(job, 5*time.Millisecond)

	s.Start(context.Background())
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := job.runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, job.runs.Load())
}

func TestSchedulerSurvivesPanics(t *testing.T) {
	job := &countingJob{fail: true}
	s := NewScheduler(logger.Discard())
	s.AddJob(job, 5*time.Millisecond)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestRunOnce(t *testing.T) {
	job := &countingJob{}
	s := NewScheduler(logger.Discard())
	s.AddJob(job, time.Hour)

	assert.NoError(t, s.RunOnce(context.Background(), "counting"))
	assert.EqualValues(t, 1, job.runs.Load())
	assert.Error(t, s.RunOnce(context.Background(), "missing"))
}
