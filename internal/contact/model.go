// Package contact implements contact-form intake: validation, durable
// storage of submissions and best-effort email notification.
package contact

// Contact is one stored contact-form submission. Optional fields are nil
// when the visitor left them blank or the row predates the column.
type Contact struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Email       string  `gorm:"not null" json:"email"`
	Phone       *string `json:"phone,omitempty"`
	Company     *string `json:"company,omitempty"`
	Subject     string  `json:"subject,omitempty"`
	ProjectType *string `gorm:"column:project_type" json:"project_type,omitempty"`
	Budget      *string `json:"budget,omitempty"`
	Timeline    *string `json:"timeline,omitempty"`
	Message     string  `gorm:"type:text;not null" json:"message"`
	// Timestamp is the ISO-8601 submission time in UTC.
	Timestamp string `gorm:"not null" json:"timestamp"`
}

// TableName keeps the table name stable across model changes.
func (Contact) TableName() string {
	return "contacts"
}

// Submission is an inbound contact form before validation.
type Submission struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Subject     string
	ProjectType string
	Budget      string
	Timeline    string
	Message     string
}
