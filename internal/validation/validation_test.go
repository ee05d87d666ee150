package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/beans/beanstest"
)

func introspector() *beanstest.Introspector {
	f := beanstest.NewIntrospector()
	f.AddType("com.acme.Person").
		Setter("name", "java.lang.String").
		Setter("address", "com.acme.Address").
		Setter("nicknames", "java.util.List")
	f.AddType("com.acme.Address").
		Setter("city", "java.lang.String")
	f.AddType("com.acme.Factory").
		StaticMethod("create", "com.acme.Person").
		Method("make", "com.acme.Address")
	return f
}

func registry() *beans.Model {
	const app = "app.xml"
	m := beans.NewModel()
	m.AddUnit(&beans.Unit{Name: app, Declarations: beans.Declarations{
		{ID: "person", ClassName: "com.acme.Person", Line: 2, Properties: []beans.PropertyValue{
			{Name: "name", Value: "Ada", Line: 3},
			{Name: "nickname", Value: "A", Line: 4},
			{Name: "address", Ref: "home", Line: 5},
			{Name: "spouse", Ref: "ghost", Line: 6},
		}},
		{ID: "bad", ClassName: "com.acme.Missing", Line: 9},
		{ID: "orphan", ParentID: "nobody", Line: 10},
		{ID: "made", FactoryBeanID: "factory", FactoryMethodName: "nope", Line: 11},
		{ID: "factory", ClassName: "com.acme.Factory", Line: 12},
		{ID: "viaStatic", ClassName: "com.acme.Factory", FactoryMethodName: "create", Line: 13},
		{ID: "a", ParentID: "b", Line: 14},
		{ID: "b", ParentID: "a", Line: 15},
		{ID: "ctor", ClassName: "com.acme.Person", ConstructorRefs: []string{"home", "ghost2"}, Line: 16},
		{ID: "lost", FactoryBeanID: "nofactory", FactoryMethodName: "x", Line: 17},
	}})
	m.AddUnit(&beans.Unit{Name: "lib.xml", Declarations: beans.Declarations{
		{ID: "home", ClassName: "com.acme.Address", Line: 2},
	}})
	m.AddConfigSet(beans.ConfigSet{Name: "main", Units: []string{app, "lib.xml"}})
	return m
}

func TestValidate(t *testing.T) {
	engine := beans.NewEngine(registry(), introspector())
	got, err := New(engine, nil).Validate("app.xml")
	require.NoError(t, err)

	d := func(line int, bean string, rule Rule, msg string) Diagnostic {
		return Diagnostic{Unit: "app.xml", Line: line, Bean: bean, Rule: rule, Severity: Error, Message: msg}
	}
	want := []Diagnostic{
		d(4, "person", RuleProperty, `no writable property "nickname" on com.acme.Person, did you mean "nicknames"?`),
		d(6, "person", RuleProperty, `no writable property "spouse" on com.acme.Person`),
		d(6, "person", RuleRef, `property "spouse" references unknown bean "ghost"`),
		d(9, "bad", RuleClass, `class "com.acme.Missing" not found`),
		d(10, "orphan", RuleParent, `parent bean "nobody" not found`),
		d(11, "made", RuleFactory, `factory method "nope" not found on com.acme.Factory`),
		d(15, "b", RuleCycle, `reference to "a" closes a cycle`),
		d(16, "ctor", RuleRef, `constructor argument references unknown bean "ghost2"`),
		d(17, "lost", RuleFactory, `factory bean "nofactory" not found`),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
	require.True(t, HasErrors(got))
	require.Equal(t, `app.xml:9: error [class] bad: class "com.acme.Missing" not found`, got[3].String())
}

func TestValidateClean(t *testing.T) {
	engine := beans.NewEngine(registry(), introspector())
	got, err := New(engine, nil).Validate("lib.xml")
	require.NoError(t, err)
	require.Empty(t, got)
	require.False(t, HasErrors(got))
}

func TestSelfReference(t *testing.T) {
	m := beans.NewModel()
	m.AddUnit(&beans.Unit{Name: "u", Declarations: beans.Declarations{
		{ID: "loop", FactoryBeanID: "loop", FactoryMethodName: "make", Line: 1},
	}})
	got, err := New(beans.NewEngine(m, introspector()), nil).Validate("u")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, RuleCycle, got[0].Rule)
}

func TestValidateIntrospectorFault(t *testing.T) {
	f := introspector()
	f.Fault = errors.New("backend down")
	_, err := New(beans.NewEngine(registry(), f), nil).Validate("app.xml")
	require.ErrorIs(t, err, f.Fault)
}
