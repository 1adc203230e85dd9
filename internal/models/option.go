package models

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxOptionTextLength = 500

var (
	ErrOptionTextLength = errors.New("option text must be between 1 and 500 characters")
	ErrOptionImageURL   = errors.New("option image url must be an absolute url or a root-relative path")
)

type ElectionOption struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	ElectionID string    `json:"election_id" gorm:"type:char(36);not null;index"`
	Text       string    `json:"text" gorm:"size:500;not null"`
	ImageURL   *string   `json:"image_url,omitempty" gorm:"size:1024"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`

	Votes []Vote `json:"-" gorm:"foreignKey:SelectedOptionID;constraint:OnDelete:CASCADE"`
}

func (ElectionOption) TableName() string {
	return "election_options"
}

func (o *ElectionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OptionParams struct {
	Text     string
	ImageURL string
}

func NewElectionOption(electionID string, params OptionParams, orderIndex int) (*ElectionOption, error) {
	text := strings.TrimSpace(params.Text)
	if n := len([]rune(text)); n == 0 || n > MaxOptionTextLength {
		return nil, ErrOptionTextLength
	}

	option := &ElectionOption{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Text:       text,
		OrderIndex: orderIndex,
	}

	if image := strings.TrimSpace(params.ImageURL); image != "" {
		if !validImageRef(image) {
			return nil, ErrOptionImageURL
		}
		option.ImageURL = &image
	}
	return option, nil
}

func validImageRef(ref string) bool {
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		_, err := url.Parse(ref)
		return err == nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
