package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type Account struct {
	ID           string    `gorm:"type:char(36);primaryKey"       json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"  json:"email"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"   json:"username"`
	PasswordHash string    `gorm:"size:255;not null"              json:"-"`
	AvatarURL    string    `gorm:"size:255"                       json:"avatarURL"`
	Role         string    `gorm:"size:20;not null;default:user"  json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type RefreshToken struct {
	ID        string    `gorm:"type:char(36);primaryKey"      json:"id"`
	AccountID string    `gorm:"type:char(36);index;not null"  json:"accountId"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null"                      json:"expiresAt"`
	IsRevoked bool      `gorm:"not null;default:false"        json:"isRevoked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID          string     `gorm:"type:char(36);primaryKey"            json:"id"`
	AccountID   string     `gorm:"type:char(36);uniqueIndex;not null"  json:"accountId"`
	FullName    string     `gorm:"size:100"                            json:"fullName"`
	PhoneNumber *string    `gorm:"size:20;uniqueIndex"                 json:"phoneNumber"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Gender      string     `gorm:"size:10"                             json:"gender"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Admin struct {
	ID              string `gorm:"type:char(36);primaryKey"           json:"id"`
	AccountID       string `gorm:"type:char(36);uniqueIndex;not null" json:"accountId"`
	PermissionLevel int    `gorm:"not null;default:1"                 json:"permissionLevel"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Exam struct {
	ID          string    `gorm:"type:char(36);primaryKey"      json:"id"`
	Title       string    `gorm:"size:255;not null"             json:"title"`
	Category    string    `gorm:"size:100"                      json:"category"`
	Level       string    `gorm:"size:10"                       json:"level"`
	Description string    `gorm:"type:text"                     json:"description"`
	IsApproved  bool      `gorm:"not null;default:false"        json:"isApproved"`
	AccountID   string    `gorm:"type:char(36);index;not null"  json:"accountId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

type Question struct {
	ID        string    `gorm:"type:char(36);primaryKey"      json:"id"`
	ExamID    string    `gorm:"type:char(36);index;not null"  json:"examId"`
	Content   string    `gorm:"type:text;not null"            json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

type Answer struct {
	ID          string    `gorm:"type:char(36);primaryKey"      json:"id"`
	QuestionID  string    `gorm:"type:char(36);index;not null"  json:"questionId"`
	Content     string    `gorm:"type:text;not null"            json:"content"`
	IsCorrect   bool      `gorm:"not null;default:false"        json:"isCorrect"`
	Explanation string    `gorm:"type:text"                     json:"explanation"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Rating struct {
	ID        string    `gorm:"type:char(36);primaryKey"                                 json:"id"`
	AccountID string    `gorm:"type:char(36);not null;uniqueIndex:idx_ratings_acc_exam"  json:"accountId"`
	ExamID    string    `gorm:"type:char(36);not null;uniqueIndex:idx_ratings_acc_exam"  json:"examId"`
	Rating    int       `gorm:"not null"                                                 json:"rating"`
	Content   string    `gorm:"type:text"                                                json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type Comment struct {
	ID        string    `gorm:"type:char(36);primaryKey"      json:"id"`
	AccountID string    `gorm:"type:char(36);index;not null"  json:"accountId"`
	ExamID    string    `gorm:"type:char(36);index;not null"  json:"examId"`
	Content   string    `gorm:"type:text;not null"            json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type StudyGroup struct {
	ID        string    `gorm:"type:char(36);primaryKey"      json:"id"`
	GroupName string    `gorm:"size:100;uniqueIndex;not null" json:"groupName"`
	AccountID string    `gorm:"type:char(36);index;not null"  json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StudyGroup) TableName() string { return "group_study" }

func (g *StudyGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

type GroupMember struct {
	GroupID   string    `gorm:"type:char(36);primaryKey"  json:"groupId"`
	AccountID string    `gorm:"type:char(36);primaryKey"  json:"accountId"`
	JoinedAt  time.Time `gorm:"autoCreateTime"            json:"joinedAt"`
}

type ExamAttempt struct {
	ID          string    `gorm:"type:char(36);primaryKey"      json:"id"`
	AccountID   string    `gorm:"type:char(36);index;not null"  json:"accountId"`
	ExamID      string    `gorm:"type:char(36);index;not null"  json:"examId"`
	Score       *float64  `json:"score"`
	AttemptDate time.Time `gorm:"autoCreateTime"                json:"attemptDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *ExamAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type ExamAttemptDetail struct {
	ID            string    `gorm:"type:char(36);primaryKey"      json:"id"`
	ExamAttemptID string    `gorm:"type:char(36);index;not null"  json:"examAttemptId"`
	QuestionID    string    `gorm:"type:char(36);index;not null"  json:"questionId"`
	AnswerID      *string   `gorm:"type:char(36);index"           json:"answerId"`
	IsCorrect     bool      `gorm:"not null"                      json:"isCorrect"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (d *ExamAttemptDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// All enumerates every persisted model for migration.
func All() []any {
	return []any{
		&Account{},
		&RefreshToken{},
		&User{},
		&Admin{},
		&Exam{},
		&Question{},
		&Answer{},
		&Rating{},
		&Comment{},
		&StudyGroup{},
		&GroupMember{},
		&ExamAttempt{},
		&ExamAttemptDetail{},
	}
}
