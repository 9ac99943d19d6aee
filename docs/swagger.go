// Package docs Farm Geo Service API.
//
// Редактор участков фермы: полигоны участков, склады, маршруты между ними,
// обогащение адресом и высотой, поиск мест и телеметрия полевых датчиков.
//
// Пути собираются swag init из аннотаций хендлеров в internal/delivery/http/handler;
// этот файл регистрирует базовое описание, чтобы /swagger/ работал и без генерации.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {}
}`

// SwaggerInfo - метаданные спецификации, переопределяются при старте
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Farm Geo Service API",
	Description:      "Участки, склады, маршруты, поиск и телеметрия фермы",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
