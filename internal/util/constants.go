package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeSVG  = "image/svg+xml"
	MimeJSON = "application/json"
)

// 分页默认值
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 1000
)
