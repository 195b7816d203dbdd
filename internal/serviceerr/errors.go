package serviceerr

import "errors"

var ErrNotFound = errors.New("not found")
var ErrSessionActive = errors.New("session is already being processed")
var ErrUnsupportedMedia = errors.New("unsupported media type")
var ErrInvalidSelection = errors.New("selection not valid for the current step")
var ErrDownloadFailed = errors.New("downloading the source video failed")
var ErrRenderFailed = errors.New("rendering the watermark failed")
var ErrUploadFailed = errors.New("uploading the result failed")
