package domain

const (
	CollectionDigitalEntity = "content_digital_entity"
)
const (
	CollectionEntity = "content_entity"
)
const (
	CollectionCompilation = "content_compilation"
)
const (
	CollectionProfile = "content_profile"
)
const (
	CollectionJobStatus = "system_job_status"
)
