package server

//go:generate swag init -g swagger.go -o docs

// @title repview API
// @version 0.1
// @description Replacement schedule fetched from the college site, with stored snapshots and update checks.
// @contact.name repview maintainers
// @contact.url https://github.com/raysh454/repview
// @BasePath /
