package models

import "time"

// HomeSection is a block on the landing page
type HomeSection struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Title    string `json:"title"`
	Content  string `gorm:"not null" json:"content"`
	Icon     string `gorm:"type:varchar(64);default:fa-solid fa-graduation-cap" json:"icon"`
	Position int    `gorm:"default:0" json:"position"`
	Enabled  bool   `gorm:"not null" json:"enabled"`

	// Rendered from Content on read
	ContentHTML string `gorm:"-" json:"content_html,omitempty"`
}

func (HomeSection) TableName() string {
	return "home_sections"
}

// Project is a portfolio entry
type Project struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	GithubLink  string `json:"github_link"`
	LiveDemo    string `json:"live_demo"`
	VideoURL    string `json:"video_url"`

	// Image URLs
	BackgroundImg string `json:"background_img"`
	Img2          string `json:"img2"`
	Img3          string `json:"img3"`
	Img4          string `json:"img4"`

	WalkthroughStep1 string `json:"walkthrough_step1"`
	WalkthroughStep2 string `json:"walkthrough_step2"`
	WalkthroughStep3 string `json:"walkthrough_step3"`
}

func (Project) TableName() string {
	return "projects"
}
