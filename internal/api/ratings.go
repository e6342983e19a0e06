package api

import (
	"context"
	"fmt"
	"net/http"
)

// SubmitRating rates a doctor for one appointment. The server enforces one
// rating per appointment and rejects duplicates.
func (c *Client) SubmitRating(ctx context.Context, appointmentID int64, req SubmitRatingRequest) error {
	return c.do(ctx, "submit_rating", http.MethodPost, fmt.Sprintf("/ratings/appointment/%d", appointmentID), req, nil)
}

// DoctorRatings lists the reviews left for one doctor.
func (c *Client) DoctorRatings(ctx context.Context, doctorID int64) ([]Rating, error) {
	var out []Rating
	if err := c.doList(ctx, "doctor_ratings", fmt.Sprintf("/ratings/doctor/%d", doctorID), &out); err != nil {
		return nil, err
	}
	return out, nil
}
