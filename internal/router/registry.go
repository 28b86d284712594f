package router

import "github.com/gin-gonic/gin"

// Module is a feature that mounts its routes on the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and the middleware shared by all of them, then
// mounts everything under a single prefix.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	shared  []gin.HandlerFunc
	modules []Module
}

func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	return &Registry{Engine: engine, API: engine.Group(prefix)}
}

// Use adds middleware run before every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.shared = append(r.shared, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the modules in the order added and returns the route table.
func (r *Registry) RegisterAll() gin.RoutesInfo {
	if len(r.shared) > 0 {
		r.API.Use(r.shared...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	return r.Engine.Routes()
}
