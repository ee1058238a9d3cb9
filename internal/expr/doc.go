// Package expr is a sandboxed evaluator for calculator expressions.
//
// Expressions use a small infix grammar: number, string and boolean
// literals, identifiers, the arithmetic operators + - * / // % **, unary
// signs, chained comparisons, short-circuiting and/or, the conditional form
// "a if cond else b", and calls to a fixed set of math functions. Source text
// is parsed into a closed set of node types and walked by a recursive
// evaluator. Anything the parser does not recognise, including attribute
// access, subscripts, lambdas and statements, is rejected with an *EvalError.
//
// All numbers are float64. Evaluation never produces NaN or infinities;
// division by zero, domain errors and overflow are reported as errors.
package expr
