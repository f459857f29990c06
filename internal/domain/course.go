package domain

import "time"

// SlotStatus статус занятия в расписании курса
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot одно запланированное занятие курса
type Slot struct {
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   time.Time  `json:"endTime" validate:"required"`
	Status    SlotStatus `json:"status" validate:"omitempty,oneof=available booked cancelled"`
	ZoomLink  string     `json:"zoomLink,omitempty" validate:"omitempty,url"`
}

// Ordered сообщает, что занятие начинается раньше, чем заканчивается
func (s Slot) Ordered() bool {
	return s.StartTime.Before(s.EndTime)
}

// Course курс, опубликованный преподавателем
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ZoomLink    string    `json:"zoomLink"`
	Price       float64   `json:"price"` // в основных единицах валюты
	Slots       []Slot    `json:"slots"`
	TutorID     string    `json:"tutorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCourse данные для создания курса
type NewCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	ZoomLink    string  `json:"zoomLink" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"gt=0"`
	Slots       []Slot  `json:"slots" validate:"required,slotorder,dive"`
}

// MissingRequired сообщает, что не заполнены title, price или slots.
// Пустой, но переданный список slots считается заполненным.
func (n NewCourse) MissingRequired() bool {
	return n.Title == "" || n.Price == 0 || n.Slots == nil
}

// PriceMinorUnits переводит цену курса в минимальные единицы валюты (центы)
func (c Course) PriceMinorUnits() int64 {
	return ToMinorUnits(c.Price)
}
