package main

// General API documentation for swaggo. The served document is registered in
// internal/httpapi/swagger.go (build with -tags=swagger).
//
// @title           edgellm API
// @version         1.0
// @description     Local companion API for the on-device model slot and generation pipeline.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
