package dto

// RestoreBackupRequest 从对象存储恢复快照
type RestoreBackupRequest struct {
	Key string `json:"key" binding:"required,max=512"`
}
