package report

import "errors"

var (
	ErrEmptyDir         = errors.New("report directory is empty")
	ErrWriteSpreadsheet = errors.New("failed to write spreadsheet")
	ErrNoRecipients     = errors.New("mail has no recipients")
	ErrBuildMessage     = errors.New("failed to build mail message")
	ErrSendMail         = errors.New("failed to send mail")
	ErrEmptyBucket      = errors.New("archive bucket is empty")
	ErrEncodeArchive    = errors.New("failed to encode archive")
	ErrUploadArchive    = errors.New("failed to upload archive")
)
