package response

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalEvents      int64                  `json:"total_events"`
	UpcomingEvents   int64                  `json:"upcoming_events"`
	TotalBookings    int64                  `json:"total_bookings"`
	BookingsLastWeek int64                  `json:"bookings_last_week"`
	TotalCustomers   int64                  `json:"total_customers"`
	TotalRevenue     float64                `json:"total_revenue"`
	RevenueLastWeek  float64                `json:"revenue_last_week"`
	RecentBookings   []AdminBookingResponse `json:"recent_bookings"`
}
