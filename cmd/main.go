// cmd/main.go
package main

import (
	"secure-bank-api/app"
)

// @title           Secure Bank API
// @version         1.0
// @description     Mock banking backend with a staged, admin-approved withdrawal workflow.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
