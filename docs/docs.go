// Package docs : описание API для swagger UI, пересобирается командой `swag init -g cmd/main.go`
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/files": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["files"], "summary": "Список файлов папки", "parameters": [{"type": "string", "name": "folder_id", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "string", "name": "cursor", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["multipart/form-data"], "tags": ["files"], "summary": "Загрузка файла", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}, {"type": "string", "name": "folder_id", "in": "formData"}, {"type": "string", "name": "name", "in": "formData"}, {"type": "string", "name": "description", "in": "formData"}, {"type": "string", "name": "tags", "in": "formData"}, {"type": "string", "name": "location", "in": "formData"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "413": {"description": "Request Entity Too Large"}}}
        },
        "/api/files/{id}": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["files"], "summary": "Метаданные файла", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"security": [{"ApiKeyAuth": []}], "tags": ["files"], "summary": "Изменение имени, описания и тегов", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["trash"], "summary": "Перемещение файла в корзину", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/files/{id}/content": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["files"], "summary": "Скачивание содержимого", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "boolean", "name": "inline", "in": "query"}], "responses": {"200": {"description": "OK"}, "410": {"description": "Gone"}}}
        },
        "/api/files/{id}/links": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["links"], "summary": "Выпуск публичной ссылки", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/folders": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["folders"], "summary": "Дочерние папки", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["folders"], "summary": "Создание папки", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/folders/{id}": {
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["trash"], "summary": "Каскадное перемещение папки в корзину", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/trash": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["trash"], "summary": "Содержимое корзины", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["trash"], "summary": "Очистка корзины", "responses": {"200": {"description": "OK"}}}
        },
        "/api/stats": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["profile"], "summary": "Использование хранилища", "responses": {"200": {"description": "OK"}}}
        },
        "/s/{token}": {
            "get": {"tags": ["links"], "summary": "Скачивание по публичной ссылке", "parameters": [{"type": "string", "name": "token", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "410": {"description": "Gone"}}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "storage-manager",
	Description:      "REST API файлового хранилища: папки, корзина, квоты и публичные ссылки",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
