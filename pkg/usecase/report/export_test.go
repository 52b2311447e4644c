package report

var (
	CleanNarrative   = cleanNarrative
	DownloadURL      = downloadURL
	ObjectKey        = objectKey
	ObjectKeyFromURL = objectKeyFromURL
)
