package beans_test

import (
	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/beans/beanstest"
)

// people builds the introspector shared by most tests:
//
//	Person   getAddress() Address, setAddress(Address), setName(String), setAge(int)
//	Address  getCity() String, setCity(String), setCountry(String)
//	DataSource <- BasicDataSource <- PooledDataSource
//	Factory  static create() Person, make() Address
func people() *beanstest.Introspector {
	f := beanstest.NewIntrospector()
	f.AddType("java.lang.Object")
	f.AddType("com.acme.Person", "java.lang.Object").
		Getter("address", "com.acme.Address").
		Setter("address", "com.acme.Address").
		Setter("name", "java.lang.String").
		Setter("age", "int")
	f.AddType("com.acme.Address", "java.lang.Object").
		Getter("city", "java.lang.String").
		Setter("city", "java.lang.String").
		Setter("country", "java.lang.String")
	f.AddType("javax.sql.DataSource")
	f.AddType("com.acme.BasicDataSource", "javax.sql.DataSource")
	f.AddType("com.acme.PooledDataSource", "com.acme.BasicDataSource")
	f.AddType("com.acme.Service").
		Setter("dataSource", "javax.sql.DataSource")
	f.AddType("com.acme.Factory").
		StaticMethod("create", "com.acme.Person").
		Method("make", "com.acme.Address")
	return f
}

func unit(name string, decls ...*beans.Declaration) *beans.Unit {
	return &beans.Unit{Name: name, Declarations: decls}
}

func model(units ...*beans.Unit) *beans.Model {
	m := beans.NewModel()
	for _, u := range units {
		m.AddUnit(u)
	}
	return m
}
