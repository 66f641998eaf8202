package config

// User-facing validation and draft errors. These are returned as message
// strings to the embedding UI, never as panics.
const (
	ErrNotAnImage          = "Only image files can be added"
	ErrUnsupportedFormat   = "HEIC/HEIF photos are not supported, please use JPEG or PNG"
	ErrDisallowedMIMEType  = "This image type is not supported"
	ErrDisallowedExtension = "This file extension is not supported"
	ErrFileTooLargeFmt     = "Image is too large (maximum %d MB)"
	ErrExceedsUploadLimFmt = "Image exceeds the %d MB upload limit"

	ErrDraftFullFmt    = "You can add up to %d images"
	ErrInvalidSlotIdx  = "Invalid image position"
	ErrDraftTornDown   = "This edit session has ended"
	ErrUploadFailedFmt = "Failed to upload %q: %v"
)
