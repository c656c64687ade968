package models

// Settings mirrors the server-side user-settings record. The client only
// ever writes it once, right after registration, as a best-effort bootstrap.
type Settings struct {
	FirstName            string `json:"firstName,omitempty"`
	LastName             string `json:"lastName,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	EmailNotifications   bool   `json:"emailNotifications"`
	PushNotifications    bool   `json:"pushNotifications"`
	MessageNotifications bool   `json:"messageNotifications"`
	GradeNotifications   bool   `json:"gradeNotifications"`
	ProfileVisibility    string `json:"profileVisibility"`
	ShowOnlineStatus     bool   `json:"showOnlineStatus"`
	ShowLastSeen         bool   `json:"showLastSeen"`
}

// DefaultSettings is what a fresh account starts with: dark theme, English,
// every notification channel on, public profile.
func DefaultSettings() Settings {
	return Settings{
		Theme:                "dark",
		Language:             "en",
		EmailNotifications:   true,
		PushNotifications:    true,
		MessageNotifications: true,
		GradeNotifications:   true,
		ProfileVisibility:    "public",
		ShowOnlineStatus:     true,
		ShowLastSeen:         true,
	}
}
