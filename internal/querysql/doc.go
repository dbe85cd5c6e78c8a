// Package querysql serializes operator DAGs from queryir into SQL text.
//
// A query block (SELECT ... FROM ... WHERE ... GROUP BY ... HAVING ...
// ORDER BY ...) is recognized by walking the single-input chain below an
// operator with a finite state machine. Each step classifies one operator,
// looking one or two inputs ahead to tell WHERE from HAVING and the outer
// projection from the projection feeding the aggregation:
//
//	start/order/distinct --Selection(agg below)--> having --Aggregation--> aggregation
//	start/order/distinct --Selection-------------> where ------any------> next block
//	start/order/distinct --Projection(agg below)-> firstProj
//	start/order/distinct --Projection------------> secondProj
//	aggregation          --Projection------------> secondProj
//	aggregation, secondProj --Selection----------> where
//
// Joins, table scans, set operations, shared operators and anything the
// machine cannot place become the FROM root and are serialized as from-items.
//
// FROM ITEMS:
//
// Every from-item gets a synthetic alias F<n> and positional column names
// a<k>, so source names never leak into the query:
//
//	((R) F0(a0, a1))
//	((((R) F0(a0, a1)) JOIN ((S) F1(a2, a3)) ON a0 = a2) F2(a0, a1, a2, a3))
//
// Offsets accumulate left to right within one FROM clause; both counters
// restart for every FROM clause, nested ones included.
//
// TEMPORARY VIEWS:
//
// An operator with more than one parent, or with the Materialize property,
// is serialized once as temp_view_of_<n> in a leading WITH clause and
// referenced by name. View names are numbered in first-encountered order;
// definitions are listed in completion order so every view is defined
// before it is used. All bookkeeping lives in a context created per
// SerializeQuery call; the plan itself is never modified.
package querysql
