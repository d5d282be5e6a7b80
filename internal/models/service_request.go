package models

import "time"

const (
	ServiceTypeConsultation     = "consultation"
	ServiceTypeDesignProject    = "design-project"
	ServiceTypeFurnitureProject = "furniture-project"
	ServiceTypeAssembly         = "assembly"
	ServiceTypeMeasurement      = "measurement"
	ServiceTypePartnership      = "partnership"
)

const (
	ServiceRequestStatusNew       = "new"
	ServiceRequestStatusProcessed = "processed"
	ServiceRequestStatusCompleted = "completed"
	ServiceRequestStatusCancelled = "cancelled"
)

// ServiceTypeLabels — отображаемые названия типов услуг.
var ServiceTypeLabels = map[string]string{
	ServiceTypeConsultation:     "Консультация дизайнера",
	ServiceTypeDesignProject:    "Дизайн-проект интерьера",
	ServiceTypeFurnitureProject: "Проект мебели",
	ServiceTypeAssembly:         "Сборка мебели",
	ServiceTypeMeasurement:      "Замер помещения",
	ServiceTypePartnership:      "Партнёрство",
}

// ValidServiceRequestStatuses список валидных статусов заявок
var ValidServiceRequestStatuses = map[string]struct{}{
	ServiceRequestStatusNew:       {},
	ServiceRequestStatusProcessed: {},
	ServiceRequestStatusCompleted: {},
	ServiceRequestStatusCancelled: {},
}

// ServiceRequest — заявка на услугу с сайта. Не удаляется, меняется только статус.
type ServiceRequest struct {
	ID          string    `db:"id" json:"id"`
	ServiceType string    `db:"service_type" json:"service_type"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"`
	Message     *string   `db:"message" json:"message"`
	Status      string    `db:"status" json:"status"`
	IPAddress   *string   `db:"ip_address" json:"ip_address"`
	UserAgent   *string   `db:"user_agent" json:"user_agent"`
	SourceURL   *string   `db:"source_url" json:"source_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceTypeLabel возвращает название услуги или сам код, если он неизвестен.
func (r *ServiceRequest) ServiceTypeLabel() string {
	if label, ok := ServiceTypeLabels[r.ServiceType]; ok {
		return label
	}
	return r.ServiceType
}
