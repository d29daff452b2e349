package docx

import "errors"

var (
	ErrInvalidPackage      = errors.New("not a valid Word document package")
	ErrStyleNotFound       = errors.New("style not found")
	ErrStyleExists         = errors.New("style already exists")
	ErrStyleTypeMismatch   = errors.New("style is of a different type")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrInvalidSpan         = errors.New("requested span not rectangular")
	ErrInvalidHeadingLevel = errors.New("heading level must be in range 0-9")
	ErrUnsupportedImage    = errors.New("unsupported image format")
	ErrLinkedToPrevious    = errors.New("header or footer is linked to previous section")
	ErrInvalidXMLText      = errors.New("text contains characters XML cannot represent")
)
