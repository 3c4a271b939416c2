package mockwrap

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/providers/synthetic"
)

const (
	// maxDepth bounds how far nested resources are discovered
	maxDepth = 8
	// maxTypes bounds the types inspected when classifying one type
	maxTypes = 256
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// verbs maps method names, lowercased, to the generator's verb vocabulary
var verbs = map[string]string{
	"new":              "create",
	"create":           "create",
	"get":              "retrieve",
	"retrieve":         "retrieve",
	"newstreaming":     "stream",
	"stream":           "stream",
	"list":             "list",
	"listautopaging":   "list",
	"cancel":           "cancel",
	"results":          "results",
	"resultsstreaming": "results",
}

// mockedProperties answers property reads on test-mode clients
var mockedProperties = map[string]any{
	"apikey":     TestMarker + "API_KEY",
	"baseurl":    llm.DefaultBaseURL,
	"timeout":    llm.DefaultTimeout,
	"maxretries": llm.DefaultMaxRetries,
}

// Namespace is a reflective view of a client or of one of its nested resources.
// Methods are invoked by dotted path relative to the namespace, for example
// "Messages.Batches.New" on an *anthropic.Client.
type Namespace struct {
	path   string
	handle *Handle
	gen    *synthetic.Generator

	methods    map[string]reflect.Value
	properties map[string]reflect.Value
	fields     map[string]reflect.Value
	children   map[string]*Namespace
	accessors  map[string]reflect.Value

	mu       sync.Mutex
	resolved map[string]*Namespace
}

// Reflect wraps client, which may be any value exposing its operations as methods
// and its nested resources as fields or zero-argument accessor methods. The
// credential is classified once, here.
func Reflect(client any, credential string, mode Mode, opts ...Option) (*Namespace, error) {
	v := reflect.ValueOf(client)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, ErrMissingBackend
	}
	handle, err := NewHandle(credential, mode)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	xlog.Info("Wrapping client reflectively", "type", v.Type().String(), "mode", mode.String(), "test_mode", handle.TestMode())

	return newNamespace("", v, handle, o.generator, map[uintptr]bool{}, 0), nil
}

func newNamespace(path string, v reflect.Value, handle *Handle, gen *synthetic.Generator, visited map[uintptr]bool, depth int) *Namespace {
	n := &Namespace{
		path:       path,
		handle:     handle,
		gen:        gen,
		methods:    map[string]reflect.Value{},
		properties: map[string]reflect.Value{},
		fields:     map[string]reflect.Value{},
		children:   map[string]*Namespace{},
		accessors:  map[string]reflect.Value{},
		resolved:   map[string]*Namespace{},
	}

	v = addressable(v)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		visited[v.Pointer()] = true
	}

	for i := 0; i < v.NumMethod(); i++ {
		m := v.Type().Method(i)
		if !m.IsExported() {
			continue
		}
		n.addMethod(m.Name, v.Method(i))
	}

	s := v
	if s.Kind() == reflect.Pointer {
		s = s.Elem()
	}
	if s.Kind() != reflect.Struct || depth >= maxDepth {
		return n
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		n.addField(f.Name, s.Field(i), visited, depth)
	}
	return n
}

// addressable returns v in a form whose method set includes pointer receivers
func addressable(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch {
	case v.Kind() == reflect.Pointer:
		return v
	case v.CanAddr():
		return v.Addr()
	case v.Kind() == reflect.Struct:
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p
	default:
		return v
	}
}

func (n *Namespace) addMethod(name string, m reflect.Value) {
	key := normalize(name)
	t := m.Type()
	if t.NumIn() == 0 && t.NumOut() == 1 && t.Out(0) != errorType {
		if isResource(t.Out(0)) {
			n.accessors[key] = m
		} else {
			n.properties[key] = m
		}
		return
	}
	n.methods[n.methodKey(name)] = m
}

func (n *Namespace) addField(name string, fv reflect.Value, visited map[uintptr]bool, depth int) {
	key := normalize(name)
	switch fv.Kind() {
	case reflect.Func:
		if !fv.IsNil() {
			n.methods[n.methodKey(name)] = fv
			return
		}
	case reflect.Pointer, reflect.Interface:
		if fv.IsNil() {
			break
		}
		dyn := fv
		if fv.Kind() == reflect.Interface {
			dyn = fv.Elem()
		}
		if !isResource(dyn.Type()) {
			break
		}
		target := addressable(dyn)
		if target.Kind() == reflect.Pointer && visited[target.Pointer()] {
			break
		}
		n.children[key] = newNamespace(llm.Join(n.path, key).String(), target, n.handle, n.gen, visited, depth+1)
		return
	case reflect.Struct:
		if isResource(fv.Type()) {
			n.children[key] = newNamespace(llm.Join(n.path, key).String(), fv, n.handle, n.gen, visited, depth+1)
			return
		}
	}
	n.fields[key] = fv
}

// isResource reports whether values of t expose operations: a method taking a
// context first, or a nested resource reachable through a field or accessor
func isResource(t reflect.Type) bool {
	return resourceType(t, map[reflect.Type]bool{})
}

func resourceType(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t.Kind() == reflect.Struct {
		t = reflect.PointerTo(t)
	}
	if seen[t] || len(seen) > maxTypes {
		return false
	}
	seen[t] = true

	recv := 1
	if t.Kind() == reflect.Interface {
		recv = 0
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		mt := m.Type
		if mt.NumIn() > recv && mt.In(recv) == contextType {
			return true
		}
		if mt.NumIn() == recv && mt.NumOut() == 1 && mt.Out(0) != errorType && resourceType(mt.Out(0), seen) {
			return true
		}
	}

	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		st := t.Elem()
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.IsExported() {
				continue
			}
			switch f.Type.Kind() {
			case reflect.Struct, reflect.Pointer, reflect.Interface:
				if resourceType(f.Type, seen) {
					return true
				}
			}
		}
	}
	return false
}

// normalize turns an exported Go name into a path segment
func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// verb maps a method name onto the generator's verb vocabulary
func verb(name string) string {
	key := normalize(name)
	if v, ok := verbs[key]; ok {
		return v
	}
	return key
}

// methodKey names a method of n. Only methods of nested resources are verbs.
func (n *Namespace) methodKey(name string) string {
	if n.path == "" {
		return normalize(name)
	}
	return verb(name)
}

// Operation returns the canonical operation for a dotted path relative to n.
// Methods of the client itself are not resource verbs and keep their own name,
// so the root Get of an SDK client is "get", not "retrieve".
func (n *Namespace) Operation(path string) llm.Operation {
	segments := strings.Split(path, ".")
	for i, s := range segments {
		if i == len(segments)-1 && (n.path != "" || i > 0) {
			segments[i] = verb(s)
		} else {
			segments[i] = normalize(s)
		}
	}
	return llm.Join(n.path, strings.Join(segments, "."))
}

// Path returns the canonical path of n ("" for the client itself)
func (n *Namespace) Path() string {
	return n.path
}

// IsTestMode reports whether calls are answered synthetically
func (n *Namespace) IsTestMode() bool {
	return n.handle.TestMode()
}

// Mode returns the calling convention
func (n *Namespace) Mode() Mode {
	return n.handle.Mode()
}

// Methods lists the operations discovered on n
func (n *Namespace) Methods() []string {
	return sortedKeys(n.methods)
}

// Resources lists the nested resources discovered on n
func (n *Namespace) Resources() []string {
	names := sortedKeys(n.accessors)
	for k := range n.children {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sub returns the nested resource at a dotted path relative to n
func (n *Namespace) Sub(path string) (*Namespace, error) {
	cur := n
	for _, s := range strings.Split(path, ".") {
		next, err := cur.child(normalize(s))
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (n *Namespace) child(name string) (*Namespace, error) {
	if c, ok := n.children[name]; ok {
		return c, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.resolved[name]; ok {
		return c, nil
	}
	acc, ok := n.accessors[name]
	if !ok {
		return nil, notFound(llm.Join(n.path, name).String())
	}
	out := acc.Call(nil)[0]
	if !out.IsValid() || (out.Kind() == reflect.Pointer || out.Kind() == reflect.Interface) && out.IsNil() {
		return nil, notFound(llm.Join(n.path, name).String())
	}
	c := newNamespace(llm.Join(n.path, name).String(), out, n.handle, n.gen, map[uintptr]bool{}, 0)
	n.resolved[name] = c
	return c, nil
}

func notFound(path string) error {
	return &llm.Error{
		Code:    "unknown_operation",
		Message: fmt.Sprintf("no operation or resource at %q", path),
		Type:    llm.ErrorTypeInvalidRequest,
	}
}

// Call invokes the operation at path. In test mode the client is never touched
// and the generator's response for the operation is returned; operations the
// generator does not know yield nil. Otherwise args are handed to the method,
// with ctx prepended when its first parameter is a context, and the method's
// result and error are returned unchanged.
func (n *Namespace) Call(ctx context.Context, path string, args ...any) (any, error) {
	op := n.Operation(path)
	if n.handle.TestMode() {
		xlog.Debug("Answering call synthetically", "operation", op.String())
		return n.gen.Generate(op, hints(args)), nil
	}

	target := n
	name := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		sub, err := n.Sub(path[:i])
		if err != nil {
			return nil, err
		}
		target, name = sub, path[i+1:]
	}
	m, ok := target.methods[target.methodKey(name)]
	if !ok {
		return nil, notFound(op.String())
	}
	return invoke(ctx, m, args)
}

// Go is Call with the asynchronous convention
func (n *Namespace) Go(ctx context.Context, path string, args ...any) *llm.Future[any] {
	if n.handle.TestMode() {
		v, err := n.Call(ctx, path, args...)
		return llm.Resolved(v, err)
	}
	return llm.Go(ctx, func(ctx context.Context) (any, error) {
		return n.Call(ctx, path, args...)
	})
}

// Attr reads an attribute of n. Fields pass through unchanged. Accessor-style
// properties are evaluated on the client, except in test mode, where the known
// configuration properties report fixed values and the others report nil.
func (n *Namespace) Attr(name string) (any, bool) {
	key := normalize(name)
	if fv, ok := n.fields[key]; ok {
		return fv.Interface(), true
	}
	if n.handle.TestMode() {
		if v, ok := mockedProperties[key]; ok {
			return v, true
		}
		if _, ok := n.properties[key]; ok {
			return nil, true
		}
		return nil, false
	}
	if p, ok := n.properties[key]; ok {
		return p.Call(nil)[0].Interface(), true
	}
	return nil, false
}

func invoke(ctx context.Context, m reflect.Value, args []any) (any, error) {
	t := m.Type()
	in := make([]reflect.Value, 0, len(args)+1)
	if t.NumIn() > 0 && t.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
	}

	fixed := t.NumIn() - len(in)
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || !t.IsVariadic() && len(args) > fixed {
		return nil, &llm.Error{
			Code:    "invalid_arguments",
			Message: fmt.Sprintf("expected %d arguments, got %d", fixed, len(args)),
			Type:    llm.ErrorTypeInvalidRequest,
		}
	}

	for _, a := range args {
		idx := len(in)
		var pt reflect.Type
		if t.IsVariadic() && idx >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(idx)
		}
		av, err := argument(a, pt)
		if err != nil {
			return nil, err
		}
		in = append(in, av)
	}

	out := m.Call(in)
	return results(out)
}

func argument(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(a)
	switch {
	case av.Type().AssignableTo(pt):
		return av, nil
	case av.Type().ConvertibleTo(pt):
		return av.Convert(pt), nil
	default:
		return reflect.Value{}, &llm.Error{
			Code:    "invalid_arguments",
			Message: fmt.Sprintf("cannot use %s as %s", av.Type(), pt),
			Type:    llm.ErrorTypeInvalidRequest,
		}
	}
}

func results(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	var err error
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}

// hints reads the generator's request hints from call arguments: the first
// string is taken as a batch id, and struct arguments are searched for the
// conventional parameter field names
func hints(args []any) synthetic.Request {
	var req synthetic.Request
	for _, a := range args {
		v := reflect.ValueOf(a)
		for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
			if v.IsNil() {
				break
			}
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.String:
			if req.BatchID == "" {
				req.BatchID = v.String()
			}
		case reflect.Struct:
			structHints(v, &req)
		}
	}
	return req
}

func structHints(v reflect.Value, req *synthetic.Request) {
	if f, ok := field(v, "Model"); ok && f.Kind() == reflect.String && req.Model == "" {
		req.Model = f.String()
	}
	for _, name := range []string{"MaxTokens", "MaxTokensToSample"} {
		if n, ok := intField(v, name); ok && req.MaxTokens == 0 {
			req.MaxTokens = n
		}
	}
	if n, ok := intField(v, "Limit"); ok {
		req.Limit = n
	}
	if f, ok := field(v, "Requests"); ok && f.Kind() == reflect.Slice {
		req.Requests = f.Len()
	}
	if f, ok := field(v, "Prompt"); ok && f.Kind() == reflect.String {
		req.Prompt = f.String()
	}
	if f, ok := field(v, "Messages"); ok && f.Kind() == reflect.Slice && req.Prompt == "" {
		parts := make([]string, 0, f.Len())
		for i := 0; i < f.Len(); i++ {
			item := f.Index(i)
			if !item.CanInterface() {
				break
			}
			if t, ok := item.Interface().(interface{ GetText() string }); ok {
				parts = append(parts, t.GetText())
			}
		}
		req.Prompt = strings.Join(parts, " ")
	}
}

// field looks up a possibly promoted field. Fields reached through a nil
// embedded pointer are reported as missing.
func field(v reflect.Value, name string) (reflect.Value, bool) {
	sf, ok := v.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, false
	}
	f, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return f, true
}

func intField(v reflect.Value, name string) (int, bool) {
	f, ok := field(v, name)
	if !ok {
		return 0, false
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(f.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(f.Uint()), true
	default:
		return 0, false
	}
}
