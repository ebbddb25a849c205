package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

// AdminUserResponse adds the booking summary shown on the admin user list.
type AdminUserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	BookingsCount int64     `json:"bookings_count"`
	TotalSpent    float64   `json:"total_spent"`
	CreatedAt     time.Time `json:"created_at"`
}

func AdminUserToResponse(user *entity.User, bookingsCount int64, totalSpent float64) AdminUserResponse {
	return AdminUserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		IsAdmin:       user.IsAdmin,
		BookingsCount: bookingsCount,
		TotalSpent:    totalSpent,
		CreatedAt:     user.CreatedAt,
	}
}
