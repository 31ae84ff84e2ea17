package models

// ProcessingStats holds the per-status video counts exposed for
// operational visibility.
type ProcessingStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// VideoError describes a single video's failure during a batch sweep.
type VideoError struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

// BatchStats aggregates the outcome of one batch processing sweep.
// Errors is bounded; once full, further failures only bump the counter.
type BatchStats struct {
	TotalProcessed int          `json:"total_processed"`
	Successful     int          `json:"successful"`
	Failed         int          `json:"failed"`
	Errors         []VideoError `json:"errors,omitempty"`
}

// ChannelSyncError describes a single channel's failure during a full sync.
type ChannelSyncError struct {
	ChannelName string `json:"channel_name"`
	Error       string `json:"error"`
}

// SyncStats aggregates the outcome of syncing every subscribed channel.
type SyncStats struct {
	TotalChannels      int                `json:"total_channels"`
	SuccessfulChannels int                `json:"successful_channels"`
	FailedChannels     int                `json:"failed_channels"`
	TotalNewVideos     int                `json:"total_new_videos"`
	TotalSkippedVideos int                `json:"total_skipped_videos"`
	Errors             []ChannelSyncError `json:"errors,omitempty"`
}

// ProgressUpdate is broadcast over the websocket hub while videos are
// being processed.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	VideoID  int64   `json:"video_id"`
	Status   string  `json:"status"`
	Done     bool    `json:"done"`
}
