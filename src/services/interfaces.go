package services

import (
	"errors"
	"io"

	"github.com/username/clubfolio/src/models"
)

var (
	ErrParsingFailed    = errors.New("parsing failed")
	ErrProcessingFailed = errors.New("processing failed")
)

// PortfolioStore is the persistence collaborator for parsed portfolio data.
// Save must apply its three effects — replace holdings, append transactions
// beyond the stored count, upsert totals — as one logical transaction.
type PortfolioStore interface {
	Save(userID int64, snapshot models.PortfolioSnapshot) error
	Load(userID int64) (models.PortfolioSnapshot, error)
	Clear(userID int64) error
	Exists(userID int64) (bool, error)
}

// UploadService runs the ingestion pipeline for uploaded brokerage exports
// and exposes the stored aggregate view.
type UploadService interface {
	ProcessPositionsUpload(fileReader io.Reader, userID int64) (*models.PortfolioSnapshot, error)
	ProcessTransactionsUpload(fileReader io.Reader, filename string, userID int64) (*models.PortfolioSnapshot, error)
	GetSnapshot(userID int64) (*models.PortfolioSnapshot, error)
	ClearUserData(userID int64) error
	HasData(userID int64) (bool, error)
}

// EmailService sends account lifecycle mail to club members.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
