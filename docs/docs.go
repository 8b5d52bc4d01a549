// Package docs holds the swagger document served at /swagger, kept in the layout swag init emits.
// Update it together with the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "GNU Affero General Public License v3.0",
            "url": "https://www.gnu.org/licenses/gpl-3.0.en.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/routes/nearest-node": {
            "get": {
                "description": "cari node terdekat pakai h3 index snapshot yang sedang dipakai.",
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "snap koordinat ke node road network terdekat.",
                "parameters": [
                    {"type": "number", "description": "latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "longitude", "name": "lon", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.NearestNodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        },
        "/routes/node": {
            "get": {
                "description": "exact match dulu, kalau tidak ada pakai substring case-insensitive dengan node id terkecil.",
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "cari node berdasarkan nama.",
                "parameters": [
                    {"type": "string", "description": "nama node", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/datastructure.Node"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        },
        "/routes/rank": {
            "post": {
                "description": "ranking k rute termurah (yen k shortest paths) dengan penjelasan kenapa tiap alternatif lebih buruk dari rute terbaik.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "ranking k rute alternatif loopless antara 2 node.",
                "parameters": [
                    {"description": "request body ranking rute", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rest.RankRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/datastructure.RankedResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        },
        "/routes/rank-batch": {
            "post": {
                "description": "setiap request di batch di ranking terhadap snapshot yang sama, request yang gagal tidak menggagalkan request lain.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "ranking rute untuk banyak pasangan node secara concurrent.",
                "parameters": [
                    {"description": "request body ranking batch", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rest.RankBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.RankBatchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        },
        "/snapshots/current": {
            "get": {
                "produces": ["application/json"],
                "tags": ["snapshots"],
                "summary": "info snapshot road network yang sedang dipakai.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SnapshotInfo"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        },
        "/snapshots/updates": {
            "post": {
                "description": "body sama dengan format updates.json: object dengan key edge_id. Snapshot lama tidak berubah.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["snapshots"],
                "summary": "apply update traffic/cuaca/blokir edge, menghasilkan snapshot baru.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SnapshotInfo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.ErrResponse"}}
                }
            }
        }
    },
    "definitions": {
        "datastructure.EdgeRef": {
            "type": "object",
            "properties": {
                "cost": {"type": "number"},
                "from": {"type": "integer"},
                "to": {"type": "integer"}
            }
        },
        "datastructure.Explanation": {
            "type": "object",
            "properties": {
                "cost_delta": {"type": "number"},
                "detour_nodes": {"type": "array", "items": {"type": "integer"}},
                "heavy_edges": {"type": "array", "items": {"$ref": "#/definitions/datastructure.EdgeRef"}},
                "hop_delta": {"type": "integer"},
                "reasons": {"type": "array", "items": {"$ref": "#/definitions/datastructure.Reason"}}
            }
        },
        "datastructure.Node": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "name": {"type": "string"}
            }
        },
        "datastructure.RankedResult": {
            "type": "object",
            "properties": {
                "no_path": {"type": "boolean"},
                "routes": {"type": "array", "items": {"$ref": "#/definitions/datastructure.RankedRoute"}},
                "snapshot_id": {"type": "string"},
                "truncated": {"type": "boolean"}
            }
        },
        "datastructure.RankedRoute": {
            "type": "object",
            "properties": {
                "distance_m": {"type": "number"},
                "duration_s": {"type": "number"},
                "explanation": {"$ref": "#/definitions/datastructure.Explanation"},
                "hops": {"type": "integer"},
                "path": {"type": "array", "items": {"type": "integer"}},
                "polyline": {"type": "string"},
                "total_cost": {"type": "number"}
            }
        },
        "datastructure.Reason": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "more": {"type": "boolean"},
                "nodes": {"type": "array", "items": {"type": "integer"}},
                "value": {"type": "number"}
            }
        },
        "rest.CostWeights": {
            "description": "bobot cost model per faktor edge",
            "type": "object",
            "properties": {
                "quality": {"type": "number"},
                "time": {"type": "number"},
                "traffic": {"type": "number"},
                "weather": {"type": "number"}
            }
        },
        "rest.ErrResponse": {
            "description": "response body untuk error",
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"},
                "status": {"type": "string"},
                "validation": {"type": "array", "items": {"type": "string"}}
            }
        },
        "rest.NearestNodeResponse": {
            "description": "node road network terdekat dari koordinat",
            "type": "object",
            "properties": {
                "distance_m": {"type": "number"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "name": {"type": "string"},
                "node_id": {"type": "integer"}
            }
        },
        "rest.RankBatchItem": {
            "description": "hasil ranking untuk satu request di batch",
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "result": {"$ref": "#/definitions/datastructure.RankedResult"},
                "status": {"type": "integer"}
            }
        },
        "rest.RankBatchRequest": {
            "description": "request body untuk ranking banyak pasangan node sekaligus",
            "type": "object",
            "required": ["requests"],
            "properties": {
                "requests": {"type": "array", "maxItems": 100, "minItems": 1, "items": {"$ref": "#/definitions/rest.RankRequest"}}
            }
        },
        "rest.RankBatchResponse": {
            "description": "response body ranking batch, urutan sama dengan request",
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/rest.RankBatchItem"}}
            }
        },
        "rest.RankRequest": {
            "description": "request body untuk ranking k rute alternatif antara 2 node",
            "type": "object",
            "required": ["k", "source_node", "target_node"],
            "properties": {
                "cost_weights": {"$ref": "#/definitions/rest.CostWeights"},
                "k": {"type": "integer", "maximum": 50, "minimum": 1},
                "q_max": {"type": "number"},
                "source_node": {"type": "integer"},
                "target_node": {"type": "integer"}
            }
        },
        "service.SnapshotInfo": {
            "type": "object",
            "properties": {
                "bidirectional": {"type": "boolean"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "num_edges": {"type": "integer"},
                "num_nodes": {"type": "integer"},
                "num_updates": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "saferoute API",
	Description:      "safety-aware route ranking: k loopless alternatives between two road network nodes, explained against the best route.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
