package domain

import "time"

type PartitionStat struct {
	Collection string `json:"collection"`
	Table      string `json:"table"`
	Partition  int    `json:"partition"`
	Records    int64  `json:"records"`
}

type StoreStatus struct {
	Driver            string          `json:"driver"`
	Partitions        []PartitionStat `json:"partitions"`
	TotalWorkers      int64           `json:"total_workers"`
	TotalJobs         int64           `json:"total_jobs"`
	TotalApplications int64           `json:"total_applications"`
	RedisHealthy      bool            `json:"redis_healthy"`
	ServerTime        time.Time       `json:"server_time"`
}
