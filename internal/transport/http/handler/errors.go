package handler

const (
	errInternalServer  = "Internal server error"
	errJobNotFound     = "Job not found"
	errRunNotFound     = "Run not found"
	errUsernameTaken   = "Username already taken"
	errBadCredentials  = "Invalid username or password"
	errInvalidSchedule = "Schedule must be a cron expression or @manual"
)
