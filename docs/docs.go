// Package docs registra el documento OpenAPI para /swagger/*.
// Las rutas salen de las anotaciones godoc de los handlers.
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
        "/animals/{animalID}/enclosure": {
            "put": {
                "description": "Mueve un animal a otro recinto. Chequea dieta y capacidad de forma atómica; si la persistencia falla, la reserva se deshace.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Asignar recinto",
                "parameters": [
                    {"type": "string", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"description": "Recinto destino", "name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"enclosure_id": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "animal or enclosure not found"},
                    "409": {"description": "diet_mismatch / capacity_exceeded"},
                    "503": {"description": "persistence failure"}
                }
            }
        },
        "/animals/{animalID}/feed": {
            "post": {
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Registrar comida",
                "parameters": [
                    {"type": "string", "description": "ID del animal", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "animal not found"}
                }
            }
        },
        "/enclosures/{enclosureID}/occupancy": {
            "get": {
                "produces": ["application/json"],
                "tags": ["enclosures"],
                "summary": "Ocupación de un recinto",
                "parameters": [
                    {"type": "string", "description": "ID del recinto", "name": "enclosureID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/occupancy.Snapshot"}},
                    "404": {"description": "enclosure not found"}
                }
            }
        },
        "/map": {
            "get": {
                "produces": ["application/json"],
                "tags": ["enclosures"],
                "summary": "Mapa del zoo por dieta",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Resumen para staff",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "forbidden"}
                }
            }
        }
    },
    "definitions": {
        "occupancy.Snapshot": {
            "type": "object",
            "properties": {
                "current": {"type": "integer"},
                "capacity": {"type": "integer"},
                "is_full": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo guarda la info exportada del documento; main puede pisar Host.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "zoo-keeper API",
	Description:      "Recintos, especies y animales del zoo con control de capacidad y dieta.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
