package dto

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReservationRequest identifies the requested slot. Date uses the
// "2006-01-02" layout.
type ReservationRequest struct {
	Date    string `json:"date"`
	TimeID  uint   `json:"time_id"`
	ThemeID uint   `json:"theme_id"`
}

// AdminReservationRequest lets an admin book on behalf of a member.
type AdminReservationRequest struct {
	MemberID uint   `json:"member_id"`
	Date     string `json:"date"`
	TimeID   uint   `json:"time_id"`
	ThemeID  uint   `json:"theme_id"`
}

type CreateThemeRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type CreateTimeRequest struct {
	StartAt string `json:"start_at"`
}
