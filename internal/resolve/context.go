// Package resolve implements the two-phase name resolver: nested variable scopes of locally-indexed variables, plus
// two parallel deques of forward-declared and defined functions so mutual
// recursion and forward references resolve without a separate pass.
package resolve

import "github.com/Yaossg/porkchop/internal/types"

// FuncDecl is a forward declaration or definition record kept in the
// decl/def deques. Return is nil while the return type has not yet been
// fixed (either never declared, or pending inference from the body).
type FuncDecl struct {
	Name   string
	Params []types.Type
	Return types.Type
	Index  int // stable continuum index
}

// FuncType reconstructs the Func type of a (fully resolved) declaration.
func (d *FuncDecl) FuncType() types.Type {
	return types.FuncType{Params: d.Params, Return: d.Return}
}

// LookupKind classifies what Lookup found.
type LookupKind int

const (
	NotFound LookupKind = iota
	LocalVar
	DeclaredFunc
	DefinedFunc
)

// LookupResult is the outcome of resolving an identifier.
type LookupResult struct {
	Kind  LookupKind
	Index int
	Type  types.Type
}

// Context is a LocalContext: a stack of scope frames plus the decl/def
// function deques, and an optional parent for lambdas (whose bodies resolve
// names in the enclosing context once their own scopes are exhausted).
type Context struct {
	parent     *Context
	scopes     []map[string]int
	localTypes []types.Type
	declScopes []map[string]*FuncDecl
	defScopes  []map[string]*FuncDecl
}

// New creates a root LocalContext (a freshly started function body), with
// parent as the enclosing context to fall back to: nil for a top-level
// function, non-nil for a lambda.
func New(parent *Context) *Context {
	c := &Context{parent: parent}
	c.PushScope()
	return c
}

// PushScope opens a nested naming environment (a scope frame), entered
// on `{...}`/fn/lambda.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, map[string]int{})
	c.declScopes = append(c.declScopes, map[string]*FuncDecl{})
	c.defScopes = append(c.defScopes, map[string]*FuncDecl{})
}

// PopScope closes the innermost scope and returns the names still
// forward-declared but never defined in it. The list must come back empty
// for the scope to be well-formed; the caller raises a semantic-resolution
// diagnostic per name otherwise.
func (c *Context) PopScope() []string {
	n := len(c.scopes) - 1
	var leaked []string
	for name := range c.declScopes[n] {
		leaked = append(leaked, name)
	}
	c.scopes = c.scopes[:n]
	c.declScopes = c.declScopes[:n]
	c.defScopes = c.defScopes[:n]
	return leaked
}

// LocalTypes returns the flat per-function local-variable type vector
// accumulated across every scope of this context (not its parent's).
func (c *Context) LocalTypes() []types.Type { return c.localTypes }

// DeclareLocal binds name (unless it is "_", the non-binding placeholder)
// to a fresh local slot of type typ in the innermost scope, and returns
// that slot's index.
func (c *Context) DeclareLocal(name string, typ types.Type) int {
	idx := len(c.localTypes)
	c.localTypes = append(c.localTypes, typ)
	if name != "_" {
		c.scopes[len(c.scopes)-1][name] = idx
	}
	return idx
}

// DeclareFunc registers a forward declaration in the innermost decl scope.
// The caller is responsible for rejecting a redeclaration first.
func (c *Context) DeclareFunc(decl *FuncDecl) {
	c.declScopes[len(c.declScopes)-1][decl.Name] = decl
}

// DefineFunc moves the matching forward declaration from the decl deque
// to the def deque, returning it so the caller can check the declared
// prototype matches the one being defined. The
// declaration's recorded types are left untouched. ok is false if name was
// never forward-declared in the innermost scope.
func (c *Context) DefineFunc(name string) (*FuncDecl, bool) {
	top := len(c.declScopes) - 1
	decl, ok := c.declScopes[top][name]
	if !ok {
		// not forward-declared: define fresh (a plain top-level `fn`)
		return nil, false
	}
	delete(c.declScopes[top], name)
	c.defScopes[top][name] = decl
	return decl, true
}

// DefineFresh records a function definition with no prior forward
// declaration (the common case: `fn name(...) = body` with no earlier
// `fn name(...): R;`).
func (c *Context) DefineFresh(decl *FuncDecl) {
	c.defScopes[len(c.defScopes)-1][decl.Name] = decl
}

// Lookup resolves an identifier: innermost-to-outermost variable scopes,
// then definition scopes, then declaration scopes (rejecting a declared-
// but-undefined function whose return type was never given, since a recursive
// call without an explicit return type is not resolvable), then falls back
// to the parent context (a lambda's enclosing scope).
func (c *Context) Lookup(name string) LookupResult {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if idx, ok := c.scopes[i][name]; ok {
			return LookupResult{Kind: LocalVar, Index: idx, Type: c.localTypes[idx]}
		}
	}
	for i := len(c.defScopes) - 1; i >= 0; i-- {
		if fd, ok := c.defScopes[i][name]; ok {
			if fd.Return == nil {
				// A function whose own body is still being parsed and whose
				// return type was left to inference: a recursive call at
				// this point has nothing to type itself with.
				return LookupResult{Kind: NotFound}
			}
			return LookupResult{Kind: DefinedFunc, Index: fd.Index, Type: fd.FuncType()}
		}
	}
	for i := len(c.declScopes) - 1; i >= 0; i-- {
		if fd, ok := c.declScopes[i][name]; ok {
			if fd.Return == nil {
				return LookupResult{Kind: NotFound}
			}
			return LookupResult{Kind: DeclaredFunc, Index: fd.Index, Type: fd.FuncType()}
		}
	}
	if c.parent != nil {
		return c.parent.Lookup(name)
	}
	return LookupResult{Kind: NotFound}
}
