package handlers

import "github.com/gin-gonic/gin"

const docsUIHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>TaskHub API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>
      body { margin: 0; background: #f8fafc; }
      #swagger-ui { max-width: 1200px; margin: 0 auto; }
    </style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: "/docs/openapi.yaml",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
        layout: "BaseLayout"
      });
    </script>
  </body>
</html>`

const openAPIYAML = `openapi: 3.0.3
info:
  title: TaskHub API
  description: Multi-user task list. Session tokens ride in the x-auth header.
  version: "1.0"
components:
  securitySchemes:
    xAuth:
      type: apiKey
      in: header
      name: x-auth
paths:
  /users:
    post:
      summary: Register a new user
      responses:
        "200":
          description: Sanitized user; x-auth header carries the session token.
        "400":
          description: Invalid email, short password, or email already in use.
  /users/login:
    post:
      summary: Log in with email and password
      responses:
        "200":
          description: Sanitized user; x-auth header carries the session token.
        "400":
          description: Bad credentials (identical for unknown email and wrong password).
  /users/me:
    get:
      summary: Current user
      security: [{xAuth: []}]
      responses:
        "200": {description: Sanitized user.}
        "401": {description: Missing, invalid, or revoked token.}
  /users/me/token:
    delete:
      summary: Log out (revoke the presented token)
      security: [{xAuth: []}]
      responses:
        "200": {description: Token revoked.}
  /todos:
    post:
      summary: Create a todo owned by the caller
      security: [{xAuth: []}]
      responses:
        "200": {description: The created todo.}
        "400": {description: Missing or empty text.}
    get:
      summary: List the caller's todos (optional limit/cursor pagination)
      security: [{xAuth: []}]
      responses:
        "200": {description: Insertion-ordered todos scoped to the caller.}
  /todos/{id}:
    get:
      summary: Fetch one of the caller's todos
      security: [{xAuth: []}]
      responses:
        "200": {description: The todo.}
        "404": {description: Missing, malformed id, or owned by someone else.}
    patch:
      summary: Update text/completed; completedAt is derived server-side
      security: [{xAuth: []}]
      responses:
        "200": {description: The updated todo.}
        "404": {description: Missing, malformed id, or owned by someone else.}
    delete:
      summary: Delete one of the caller's todos
      security: [{xAuth: []}]
      responses:
        "200": {description: The deleted todo.}
        "404": {description: Missing, malformed id, or owned by someone else.}
`

func DocsUI(ctx *gin.Context) {
	ctx.Data(200, "text/html; charset=utf-8", []byte(docsUIHTML))
}

func DocsOpenAPI(ctx *gin.Context) {
	ctx.Data(200, "application/yaml; charset=utf-8", []byte(openAPIYAML))
}
