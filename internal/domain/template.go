package domain

// Template: именованный текст с плейсхолдерами вида {name}
type Template struct {
	ID   string `yaml:"id"`
	Body string `yaml:"body"`
}

// RenderRequest: что и с какими данными рендерить
type RenderRequest struct {
	TemplateID string
	Data       map[string]any
}

const (
	TemplateRegistration      = "registration"
	TemplateNotification      = "notification"
	TemplatePaymentSuccess    = "paymentSuccess"
	TemplatePaymentFailed     = "paymentFailed"
	TemplateWithdrawalSuccess = "withdrawalSuccess"
	TemplateWithdrawalFailed  = "withdrawalFailed"
	TemplateCommandHelp       = "commandHelp"
)
