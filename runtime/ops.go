package sgruntime

import (
	"math"
	"strings"
)

func evalUnary(op string, v Value) (Value, error) {
	switch op {
	case "!":
		if v.kind != BoolKind {
			return None, typeErrorf("operand of ! must be bool, got %s", v.kind)
		}
		return Bool(!v.b), nil
	case "-":
		switch v.kind {
		case SmallIntKind:
			return IntOrNum(-int64(v.i)), nil
		case NumberKind:
			return Num(-v.f), nil
		default:
			return None, typeErrorf("cannot negate %s", v.kind)
		}
	default:
		return None, typeErrorf("unknown unary operator %s", op)
	}
}

func evalBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return Bool(Equal(left, right)), nil
	case "!=":
		return Bool(!Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return compare(op, left, right)
	case "+":
		if left.kind == StringKind || right.kind == StringKind {
			return Str(concatText(left) + concatText(right)), nil
		}
		if left.kind == ListKind && right.kind == ListKind {
			items := make([]Value, 0, left.List().Len()+right.List().Len())
			items = append(items, left.List().Items...)
			items = append(items, right.List().Items...)
			return ListOf(items...), nil
		}
		return arith(op, left, right)
	case "-", "*", "/", "%":
		if op == "*" && left.kind == StringKind && right.kind == SmallIntKind {
			if right.i < 0 {
				return None, typeErrorf("cannot repeat a string a negative number of times")
			}
			return Str(strings.Repeat(left.s, int(right.i))), nil
		}
		return arith(op, left, right)
	default:
		return None, typeErrorf("unknown operator %s", op)
	}
}

func concatText(v Value) string {
	if v.kind == NoneKind {
		return ""
	}
	return Display(v)
}

func arith(op string, left, right Value) (Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return None, typeErrorf("unsupported operand types for %s: %s and %s", op, left.kind, right.kind)
	}
	if (op == "/" || op == "%") && right.Float() == 0 {
		if op == "/" {
			return None, newError(ArithmeticError, "division by zero")
		}
		return None, newError(ArithmeticError, "modulo by zero")
	}
	if left.kind == SmallIntKind && right.kind == SmallIntKind {
		a, b := int64(left.i), int64(right.i)
		switch op {
		case "+":
			return IntOrNum(a + b), nil
		case "-":
			return IntOrNum(a - b), nil
		case "*":
			return IntOrNum(a * b), nil
		case "%":
			return IntOrNum(a % b), nil
		case "/":
			return Num(float64(a) / float64(b)), nil
		}
	}
	a, b := left.Float(), right.Float()
	switch op {
	case "+":
		return Num(a + b), nil
	case "-":
		return Num(a - b), nil
	case "*":
		return Num(a * b), nil
	case "/":
		return Num(a / b), nil
	case "%":
		return Num(math.Mod(a, b)), nil
	}
	return None, typeErrorf("unknown operator %s", op)
}

func compare(op string, left, right Value) (Value, error) {
	var c int
	switch {
	case left.IsNumeric() && right.IsNumeric():
		a, b := left.Float(), right.Float()
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			return Bool(false), nil
		}
	case left.kind == StringKind && right.kind == StringKind:
		c = strings.Compare(left.s, right.s)
	default:
		return None, typeErrorf("cannot compare %s with %s", left.kind, right.kind)
	}
	switch op {
	case "<":
		return Bool(c < 0), nil
	case ">":
		return Bool(c > 0), nil
	case "<=":
		return Bool(c <= 0), nil
	default:
		return Bool(c >= 0), nil
	}
}
