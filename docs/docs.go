package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "GreenRoute Dispatch API",
    "description": "Worker ranking, assignments, service tickets and invoices for grounds-maintenance dispatch",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {
        "tags": [
          "health"
        ],
        "summary": "Health check",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/workers": {
      "get": {
        "tags": [
          "workers"
        ],
        "summary": "List workers",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/workers/{id}": {
      "get": {
        "tags": [
          "workers"
        ],
        "summary": "Get worker",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/workers/{id}/deactivate": {
      "post": {
        "tags": [
          "workers"
        ],
        "summary": "Deactivate worker",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/sites": {
      "get": {
        "tags": [
          "sites"
        ],
        "summary": "List sites",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      },
      "post": {
        "tags": [
          "sites"
        ],
        "summary": "Create site",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/sites/{id}": {
      "get": {
        "tags": [
          "sites"
        ],
        "summary": "Get site",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/sites/{id}/recommendations": {
      "get": {
        "tags": [
          "sites"
        ],
        "summary": "Ranked worker recommendations for a site",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/assignments": {
      "get": {
        "tags": [
          "assignments"
        ],
        "summary": "List assignments",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      },
      "post": {
        "tags": [
          "assignments"
        ],
        "summary": "Assign worker to site",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/assignments/{id}/start": {
      "post": {
        "tags": [
          "assignments"
        ],
        "summary": "Start assignment",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/assignments/{id}/complete": {
      "post": {
        "tags": [
          "assignments"
        ],
        "summary": "Complete assignment",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/assignments/{id}/cancel": {
      "post": {
        "tags": [
          "assignments"
        ],
        "summary": "Cancel assignment",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/customers": {
      "get": {
        "tags": [
          "customers"
        ],
        "summary": "List customers",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/customers/{id}": {
      "get": {
        "tags": [
          "customers"
        ],
        "summary": "Get customer",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/tickets": {
      "get": {
        "tags": [
          "tickets"
        ],
        "summary": "List service tickets",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      },
      "post": {
        "tags": [
          "tickets"
        ],
        "summary": "Create service ticket",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/tickets/{id}": {
      "get": {
        "tags": [
          "tickets"
        ],
        "summary": "Get service ticket",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/tickets/{id}/transition": {
      "post": {
        "tags": [
          "tickets"
        ],
        "summary": "Apply a lifecycle event to a ticket",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/invoices": {
      "get": {
        "tags": [
          "invoices"
        ],
        "summary": "List invoices",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      },
      "post": {
        "tags": [
          "invoices"
        ],
        "summary": "Create invoice",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/invoices/{id}": {
      "get": {
        "tags": [
          "invoices"
        ],
        "summary": "Get invoice",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/invoices/{id}/pay": {
      "post": {
        "tags": [
          "invoices"
        ],
        "summary": "Mark invoice paid",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/invoices/{id}/cancel": {
      "post": {
        "tags": [
          "invoices"
        ],
        "summary": "Cancel invoice",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/invoices/sweep": {
      "post": {
        "tags": [
          "invoices"
        ],
        "summary": "Mark pending invoices past due as overdue",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/knowledge/regions": {
      "get": {
        "tags": [
          "knowledge"
        ],
        "summary": "Known regions",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/knowledge/regions/{region}": {
      "get": {
        "tags": [
          "knowledge"
        ],
        "summary": "Regional facts",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/knowledge/seasons/{season}": {
      "get": {
        "tags": [
          "knowledge"
        ],
        "summary": "Seasonal activities",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/knowledge/skills/{skill}": {
      "get": {
        "tags": [
          "knowledge"
        ],
        "summary": "Skill facts",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/events": {
      "get": {
        "tags": [
          "events"
        ],
        "summary": "Lifecycle event history",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/import": {
      "post": {
        "tags": [
          "import"
        ],
        "summary": "Import CSV data",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/chat": {
      "post": {
        "tags": [
          "assistant"
        ],
        "summary": "Customer assistant chat",
        "produces": [
          "application/json"
        ],
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    },
    "/api/chat/{customer_id}": {
      "delete": {
        "tags": [
          "assistant"
        ],
        "summary": "Reset customer chat history",
        "parameters": [
          {
            "type": "string",
            "description": "Customer ID",
            "name": "customer_id",
            "in": "path",
            "required": true
          }
        ],
        "responses": {
          "204": {
            "description": "No Content"
          },
          "404": {
            "description": "Not Found"
          }
        }
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
