package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering jobs on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobNotFound is returned for unknown job names
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyRunning is returned when a job is triggered while its
	// previous run is still in progress
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
