package model

// Material 培训资料文件（文档、视频等），经存储服务上传
type Material struct {
	BaseModel
	ModuleID    uint   `gorm:"index;not null" json:"moduleId"`
	UploaderID  uint   `gorm:"index" json:"uploaderId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	URL         string `gorm:"size:255;not null" json:"url"`
	ContentType string `gorm:"size:100" json:"contentType"`
	Size        int64  `gorm:"default:0" json:"size"`
	// 视频附加信息，由 ffmpeg 探测；非视频为零值
	VideoDuration float64 `gorm:"default:0" json:"videoDuration"`
	ThumbnailURL  string  `gorm:"size:255" json:"thumbnailUrl"`
}

func (Material) TableName() string {
	return "materials"
}
