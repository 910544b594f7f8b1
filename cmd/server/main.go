package main

import "agroterra/internal/app"

// @title           Agroterra API
// @version         1.0
// @description     Farm management backend: accounts, farms, plots, crops, field tasks and cost reporting.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
