package po

// MediaObject describes an archived source video in the media store.
type MediaObject struct {
	Key         string // storage key relative to the backend root
	URI         string // file:// or gs:// reference
	ContentType string
	SizeBytes   int64
}
