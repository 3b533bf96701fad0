package domain

import "errors"

var (
	ErrInvalidProject   = errors.New("invalid_project")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidSubject   = errors.New("invalid_subject")
	ErrInvalidTrigger   = errors.New("invalid_trigger")
	ErrTemplateNotFound = errors.New("template not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrEventNotFound    = errors.New("email event not found")
	ErrAlreadySent      = errors.New("campaign already sent")
	ErrNoRecipients     = errors.New("no recipients")
)
