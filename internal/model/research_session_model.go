package model

import "time"

type ResearchSession struct {
	Id             int64     `gorm:"primaryKey;autoIncrement"`
	UserId         int64     `gorm:"not null;index"`
	PrimaryTopic   string    `gorm:"type:text;not null;default:'General Research'"`
	SessionSummary *string   `gorm:"type:text"`
	IsActive       bool      `gorm:"not null;default:true;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (ResearchSession) TableName() string {
	return "research_sessions"
}
