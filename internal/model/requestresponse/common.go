package requestresponse

// ErrorResponse : стандартная структура ошибки (util.HandleError)
type ErrorResponse struct {
	Error   string `json:"error" example:"Not Found"`
	Message string `json:"message" example:"файл не найден"`
	Code    int    `json:"code" example:"404"`
}

// SuccessResponse : стандартный ответ успешного выполнения операции
type SuccessResponse struct {
	Message string `json:"message" example:"Операция выполнена успешно"`
}

// BatchRequest : идентификаторы файлов для пакетной операции
type BatchRequest struct {
	FileIDs []string `json:"file_ids" validate:"required,min=1,dive,uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
}

// ItemFailureResponse : ошибка одного элемента пакета
type ItemFailureResponse struct {
	ID    string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Error string `json:"error" example:"не найдено"`
}

// BatchReportResponse : итог пакетной операции
type BatchReportResponse struct {
	Data struct {
		Task      string                `json:"task" example:"purge-files"`
		Succeeded int                   `json:"succeeded" example:"3"`
		Skipped   int                   `json:"skipped" example:"0"`
		Failed    int                   `json:"failed" example:"1"`
		Failures  []ItemFailureResponse `json:"failures,omitempty"`
	} `json:"data"`
}
