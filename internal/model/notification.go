package model

type GetMyNotificationsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

type GetListNotificationRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListNotificationResponse struct {
	Notifications []Notification `json:"notifications"`
}

type MarkNotificationReadRequest struct {
	ID int64 `json:"id"`
}

type MarkNotificationReadResponse struct {
	Notification Notification `json:"notification"`
}
