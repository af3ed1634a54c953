package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// Schema contains the database schema for the CivicHub report store.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
    id VARCHAR(36) PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    location VARCHAR(255) NOT NULL,
    category VARCHAR(32) NOT NULL,
    status VARCHAR(32) NOT NULL DEFAULT 'reported',
    sentiment VARCHAR(16) NOT NULL,
    upvote_count INT NOT NULL DEFAULT 0,
    comment_count INT NOT NULL DEFAULT 0,
    photo_urls TEXT,
    created_by VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_reports_created_by (created_by),
    INDEX idx_reports_status (status),
    INDEX idx_reports_created_at (created_at)
);

CREATE TABLE IF NOT EXISTS report_upvotes (
    report_id VARCHAR(36) NOT NULL,
    email VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (report_id, email)
);

CREATE TABLE IF NOT EXISTS report_comments (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    report_id VARCHAR(36) NOT NULL,
    created_by VARCHAR(255) NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_report_comments_report (report_id)
);
`

// InitializeSchema creates the report store tables if they do not exist.
func InitializeSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info("Database schema initialized successfully")
	return nil
}
