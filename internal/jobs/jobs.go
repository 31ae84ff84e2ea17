package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job IDs registered by the process bootstrap.
const (
	JobChannelSync    = "channel-sync"
	JobProcessPending = "process-pending"
)

// StartScheduler starts the background job scheduler. Jobs themselves must
// already be registered with the JobManager.
func StartScheduler(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	scheduleJob(s, app, JobChannelSync, app.Config().Sync.IntervalMinutes)
	scheduleJob(s, app, JobProcessPending, app.Config().Processing.IntervalMinutes)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func scheduleJob(s *gocron.Scheduler, app JobContext, jobID string, intervalMinutes int) {
	if intervalMinutes == 0 {
		log.Printf("Interval for job '%s' is 0, scheduled runs are disabled.", jobID)
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobID, intervalMinutes)

	_, err := s.Every(intervalMinutes).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		if err := app.JobManager().RunJob(jobID, app); err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}
