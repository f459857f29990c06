package handlers

import (
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
)

// isoLayout формат меток времени в ответах: UTC с миллисекундами
const isoLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

type slotResponse struct {
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Status    domain.SlotStatus `json:"status"`
	ZoomLink  string            `json:"zoomLink,omitempty"`
}

type courseResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ZoomLink    string         `json:"zoomLink"`
	Price       float64        `json:"price"`
	Slots       []slotResponse `json:"slots"`
	TutorID     string         `json:"tutorId"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func toCourseResponse(c domain.Course) courseResponse {
	slots := make([]slotResponse, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, slotResponse{
			StartTime: formatTime(s.StartTime),
			EndTime:   formatTime(s.EndTime),
			Status:    s.Status,
			ZoomLink:  s.ZoomLink,
		})
	}
	return courseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ZoomLink:    c.ZoomLink,
		Price:       c.Price,
		Slots:       slots,
		TutorID:     c.TutorID,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func toCourseResponses(courses []domain.Course) []courseResponse {
	out := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}
	return out
}

// createCourseRequest тело POST /courses
type createCourseRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ZoomLink    string        `json:"zoomLink"`
	Price       float64       `json:"price"`
	Slots       []domain.Slot `json:"slots"`
}

func (r createCourseRequest) toDomain() domain.NewCourse {
	return domain.NewCourse{
		Title:       r.Title,
		Description: r.Description,
		ZoomLink:    r.ZoomLink,
		Price:       r.Price,
		Slots:       r.Slots,
	}
}

// enrollRequest тело POST /courses/{courseId}/enroll
type enrollRequest struct {
	SuccessURL string `json:"successUrl" validate:"omitempty,url"`
	CancelURL  string `json:"cancelUrl" validate:"omitempty,url"`
}
