package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// DecodeModule reads a module tree emitted by the external parser. The input is
// JSON, optionally with comments and trailing commas.
func DecodeModule(data []byte) (*Module, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("ast: parse module json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ast: decode module json: %w", err)
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	mod, ok := node.(*Module)
	if !ok {
		return nil, fmt.Errorf("ast: root node is %s, expected Module", node.NodeType())
	}
	return mod, nil
}

func decodeNode(node map[string]any) (Node, error) {
	if node == nil {
		return nil, fmt.Errorf("ast: node is nil")
	}
	typ, _ := node["type"].(string)
	decoded, err := decodeNodeOfType(node, NodeType(typ))
	if err != nil {
		return nil, err
	}
	if span, ok := decodeSpan(node["span"]); ok {
		SetSpan(decoded, span)
	}
	return decoded, nil
}

func decodeNodeOfType(node map[string]any, typ NodeType) (Node, error) {
	switch typ {
	case NodeModule:
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return NewModule(body), nil
	case NodeIdentifier:
		name, _ := node["name"].(string)
		return NewIdentifier(name), nil
	case NodeStringLiteral:
		value, _ := node["value"].(string)
		return NewStringLiteral(value), nil
	case NodeIntegerLiteral:
		num, _ := node["value"].(json.Number)
		if num == "" {
			return NewIntegerLiteral(0), nil
		}
		value, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("ast: integer literal %s: %w", num, err)
		}
		return NewIntegerLiteral(value), nil
	case NodeFloatLiteral:
		num, _ := node["value"].(json.Number)
		value, _ := num.Float64()
		return NewFloatLiteral(value), nil
	case NodeBooleanLiteral:
		value, _ := node["value"].(bool)
		return NewBooleanLiteral(value), nil
	case NodeNoneLiteral:
		return NewNoneLiteral(), nil
	case NodeListLiteral, NodeTupleLiteral:
		elems, err := decodeExpressions(node["elements"])
		if err != nil {
			return nil, err
		}
		if typ == NodeTupleLiteral {
			return NewTupleLiteral(elems), nil
		}
		return NewListLiteral(elems), nil
	case NodeDictLiteral:
		rawEntries, _ := node["entries"].([]any)
		entries := make([]*DictEntry, 0, len(rawEntries))
		for _, raw := range rawEntries {
			entryNode, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid dict entry %T", raw)
			}
			key, err := decodeExpressionField(entryNode, "key")
			if err != nil {
				return nil, err
			}
			value, err := decodeExpressionField(entryNode, "value")
			if err != nil {
				return nil, err
			}
			entries = append(entries, NewDictEntry(key, value))
		}
		return NewDictLiteral(entries), nil
	case NodeStructLiteral:
		rawFields, _ := node["fields"].([]any)
		fields := make([]*StructField, 0, len(rawFields))
		for _, raw := range rawFields {
			fieldNode, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid struct field %T", raw)
			}
			name, err := decodeIdentifierField(fieldNode, "name")
			if err != nil {
				return nil, err
			}
			value, err := decodeExpressionField(fieldNode, "value")
			if err != nil {
				return nil, err
			}
			fields = append(fields, NewStructField(name, value))
		}
		return NewStructLiteral(fields), nil
	case NodeSimpleTypeExpression, NodeGenericTypeExpression, NodeUnionTypeExpression:
		return decodeTypeExpression(node)
	case NodeFunctionCall:
		callee, err := decodeExpressionField(node, "callee")
		if err != nil {
			return nil, err
		}
		rawArgs, _ := node["arguments"].([]any)
		args := make([]*Argument, 0, len(rawArgs))
		for _, raw := range rawArgs {
			argNode, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid call argument %T", raw)
			}
			value, err := decodeExpressionField(argNode, "value")
			if err != nil {
				return nil, err
			}
			kind, _ := argNode["kind"].(string)
			if kind == "" {
				kind = string(ArgumentPositional)
			}
			name, _ := argNode["name"].(string)
			arg := NewArgument(ArgumentKind(kind), name, value)
			if span, ok := decodeSpan(argNode["span"]); ok {
				SetSpan(arg, span)
			}
			args = append(args, arg)
		}
		return NewFunctionCall(callee, args), nil
	case NodeMemberAccessExpression:
		object, err := decodeExpressionField(node, "object")
		if err != nil {
			return nil, err
		}
		member, err := decodeIdentifierField(node, "member")
		if err != nil {
			return nil, err
		}
		return NewMemberAccessExpression(object, member), nil
	case NodeIndexExpression:
		object, err := decodeExpressionField(node, "object")
		if err != nil {
			return nil, err
		}
		index, err := decodeExpressionField(node, "index")
		if err != nil {
			return nil, err
		}
		return NewIndexExpression(object, index), nil
	case NodeSliceExpression:
		object, err := decodeExpressionField(node, "object")
		if err != nil {
			return nil, err
		}
		var parts [3]Expression
		for i, key := range []string{"start", "stop", "step"} {
			if _, present := node[key]; !present || node[key] == nil {
				continue
			}
			expr, err := decodeExpressionField(node, key)
			if err != nil {
				return nil, err
			}
			parts[i] = expr
		}
		return NewSliceExpression(object, parts[0], parts[1], parts[2]), nil
	case NodeBinaryExpression:
		op, _ := node["operator"].(string)
		left, err := decodeExpressionField(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpressionField(node, "right")
		if err != nil {
			return nil, err
		}
		return NewBinaryExpression(op, left, right), nil
	case NodeUnaryExpression:
		op, _ := node["operator"].(string)
		operand, err := decodeExpressionField(node, "operand")
		if err != nil {
			return nil, err
		}
		return NewUnaryExpression(UnaryOperator(op), operand), nil
	case NodeConditionalExpression:
		cond, err := decodeExpressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeExpressionField(node, "then")
		if err != nil {
			return nil, err
		}
		els, err := decodeExpressionField(node, "else")
		if err != nil {
			return nil, err
		}
		return NewConditionalExpression(cond, then, els), nil
	case NodeLambdaExpression:
		params, err := decodeParams(node["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpressionField(node, "body")
		if err != nil {
			return nil, err
		}
		return NewLambdaExpression(params, body), nil
	case NodeListComprehension:
		elem, err := decodeExpressionField(node, "element")
		if err != nil {
			return nil, err
		}
		clauses, err := decodeClauses(node["clauses"])
		if err != nil {
			return nil, err
		}
		return NewListComprehension(elem, clauses), nil
	case NodeDictComprehension:
		key, err := decodeExpressionField(node, "key")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, err
		}
		clauses, err := decodeClauses(node["clauses"])
		if err != nil {
			return nil, err
		}
		return NewDictComprehension(key, value, clauses), nil
	default:
		return decodeStatementNode(node, typ)
	}
}

func decodeStatementNode(node map[string]any, typ NodeType) (Node, error) {
	switch typ {
	case NodeAssignmentStatement:
		op, _ := node["operator"].(string)
		if op == "" {
			op = string(AssignmentAssign)
		}
		left, err := decodeTargetField(node, "left")
		if err != nil {
			return nil, err
		}
		var annotation TypeExpression
		if raw, ok := node["annotation"].(map[string]any); ok {
			annotation, err = decodeTypeExpression(raw)
			if err != nil {
				return nil, err
			}
		}
		right, err := decodeExpressionField(node, "right")
		if err != nil {
			return nil, err
		}
		return NewAssignmentStatement(AssignmentOperator(op), left, annotation, right), nil
	case NodeFunctionDefinition:
		id, err := decodeIdentifierField(node, "id")
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(node["params"])
		if err != nil {
			return nil, err
		}
		var ret TypeExpression
		if raw, ok := node["returnType"].(map[string]any); ok {
			ret, err = decodeTypeExpression(raw)
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return NewFunctionDefinition(id, params, body, ret), nil
	case NodeReturnStatement:
		if raw, ok := node["argument"].(map[string]any); ok {
			arg, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			return NewReturnStatement(arg), nil
		}
		return NewReturnStatement(nil), nil
	case NodeIfStatement:
		cond, err := decodeExpressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeStatements(node["then"])
		if err != nil {
			return nil, err
		}
		els, err := decodeStatements(node["else"])
		if err != nil {
			return nil, err
		}
		return NewIfStatement(cond, then, els), nil
	case NodeForLoop:
		target, err := decodeTargetField(node, "target")
		if err != nil {
			return nil, err
		}
		iter, err := decodeExpressionField(node, "iterable")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return NewForLoop(target, iter, body), nil
	case NodeWhileLoop:
		cond, err := decodeExpressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return NewWhileLoop(cond, body), nil
	case NodeBreakStatement:
		return NewBreakStatement(), nil
	case NodeContinueStatement:
		return NewContinueStatement(), nil
	case NodePassStatement:
		return NewPassStatement(), nil
	case NodeLoadStatement:
		module, _ := node["module"].(string)
		rawSymbols, _ := node["symbols"].([]any)
		symbols := make([]*LoadSymbol, 0, len(rawSymbols))
		for _, raw := range rawSymbols {
			symNode, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid load symbol %T", raw)
			}
			local, err := decodeIdentifierField(symNode, "local")
			if err != nil {
				return nil, err
			}
			name, _ := symNode["name"].(string)
			if name == "" {
				name = local.Name
			}
			sym := NewLoadSymbol(local, name)
			if span, ok := decodeSpan(symNode["span"]); ok {
				SetSpan(sym, span)
			}
			symbols = append(symbols, sym)
		}
		return NewLoadStatement(module, symbols), nil
	default:
		return nil, fmt.Errorf("ast: unsupported node type %q", typ)
	}
}

func decodeTypeExpression(node map[string]any) (TypeExpression, error) {
	typ, _ := node["type"].(string)
	var out TypeExpression
	switch NodeType(typ) {
	case NodeSimpleTypeExpression:
		name, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		out = NewSimpleTypeExpression(name)
	case NodeGenericTypeExpression:
		baseRaw, ok := node["base"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: generic type missing base")
		}
		base, err := decodeTypeExpression(baseRaw)
		if err != nil {
			return nil, err
		}
		args, err := decodeTypeExpressions(node["arguments"])
		if err != nil {
			return nil, err
		}
		out = NewGenericTypeExpression(base, args)
	case NodeUnionTypeExpression:
		members, err := decodeTypeExpressions(node["members"])
		if err != nil {
			return nil, err
		}
		out = NewUnionTypeExpression(members)
	default:
		return nil, fmt.Errorf("ast: unsupported type expression %q", typ)
	}
	if span, ok := decodeSpan(node["span"]); ok {
		SetSpan(out, span)
	}
	return out, nil
}

func decodeTypeExpressions(raw any) ([]TypeExpression, error) {
	items, _ := raw.([]any)
	out := make([]TypeExpression, 0, len(items))
	for _, item := range items {
		itemNode, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid type expression %T", item)
		}
		te, err := decodeTypeExpression(itemNode)
		if err != nil {
			return nil, err
		}
		out = append(out, te)
	}
	return out, nil
}

func decodeParams(raw any) ([]*FunctionParameter, error) {
	items, _ := raw.([]any)
	out := make([]*FunctionParameter, 0, len(items))
	for _, item := range items {
		paramNode, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid function parameter %T", item)
		}
		name, err := decodeIdentifierField(paramNode, "name")
		if err != nil {
			return nil, err
		}
		kind, _ := paramNode["kind"].(string)
		var paramType TypeExpression
		if rawType, ok := paramNode["paramType"].(map[string]any); ok {
			paramType, err = decodeTypeExpression(rawType)
			if err != nil {
				return nil, err
			}
		}
		var def Expression
		if rawDef, ok := paramNode["default"].(map[string]any); ok {
			def, err = decodeExpression(rawDef)
			if err != nil {
				return nil, err
			}
		}
		param := NewFunctionParameter(name, ParameterKind(kind), paramType, def)
		if span, ok := decodeSpan(paramNode["span"]); ok {
			SetSpan(param, span)
		}
		out = append(out, param)
	}
	return out, nil
}

func decodeClauses(raw any) ([]*ComprehensionClause, error) {
	items, _ := raw.([]any)
	out := make([]*ComprehensionClause, 0, len(items))
	for _, item := range items {
		clauseNode, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid comprehension clause %T", item)
		}
		var clause *ComprehensionClause
		if _, isFor := clauseNode["iterable"]; isFor {
			target, err := decodeTargetField(clauseNode, "target")
			if err != nil {
				return nil, err
			}
			iter, err := decodeExpressionField(clauseNode, "iterable")
			if err != nil {
				return nil, err
			}
			clause = NewForClause(target, iter)
		} else {
			cond, err := decodeExpressionField(clauseNode, "condition")
			if err != nil {
				return nil, err
			}
			clause = NewIfClause(cond)
		}
		if span, ok := decodeSpan(clauseNode["span"]); ok {
			SetSpan(clause, span)
		}
		out = append(out, clause)
	}
	return out, nil
}

func decodeStatements(raw any) ([]Statement, error) {
	items, _ := raw.([]any)
	out := make([]Statement, 0, len(items))
	for _, item := range items {
		stmtNode, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid statement %T", item)
		}
		decoded, err := decodeNode(stmtNode)
		if err != nil {
			return nil, err
		}
		stmt, ok := decoded.(Statement)
		if !ok {
			return nil, fmt.Errorf("ast: %s is not a statement", decoded.NodeType())
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeExpressions(raw any) ([]Expression, error) {
	items, _ := raw.([]any)
	out := make([]Expression, 0, len(items))
	for _, item := range items {
		exprNode, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid expression %T", item)
		}
		expr, err := decodeExpression(exprNode)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeExpression(node map[string]any) (Expression, error) {
	decoded, err := decodeNode(node)
	if err != nil {
		return nil, err
	}
	expr, ok := decoded.(Expression)
	if !ok {
		return nil, fmt.Errorf("ast: %s is not an expression", decoded.NodeType())
	}
	return expr, nil
}

func decodeExpressionField(node map[string]any, key string) (Expression, error) {
	raw, ok := node[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: %v missing %s", node["type"], key)
	}
	return decodeExpression(raw)
}

func decodeIdentifierField(node map[string]any, key string) (*Identifier, error) {
	raw, ok := node[key].(map[string]any)
	if !ok {
		// Parsers commonly emit bare names for identifiers in declaration positions.
		if name, ok := node[key].(string); ok && name != "" {
			return NewIdentifier(name), nil
		}
		return nil, fmt.Errorf("ast: %v missing %s", node["type"], key)
	}
	decoded, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	id, ok := decoded.(*Identifier)
	if !ok {
		return nil, fmt.Errorf("ast: %s is not an identifier", decoded.NodeType())
	}
	return id, nil
}

func decodeTargetField(node map[string]any, key string) (AssignmentTarget, error) {
	raw, ok := node[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: %v missing %s", node["type"], key)
	}
	decoded, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	target, ok := decoded.(AssignmentTarget)
	if !ok {
		return nil, fmt.Errorf("ast: invalid assignment target %s", decoded.NodeType())
	}
	return target, nil
}

func decodeSpan(raw any) (Span, bool) {
	node, ok := raw.(map[string]any)
	if !ok {
		return Span{}, false
	}
	start, _ := node["start"].(map[string]any)
	end, _ := node["end"].(map[string]any)
	return Span{Start: decodePosition(start), End: decodePosition(end)}, true
}

func decodePosition(node map[string]any) Position {
	if node == nil {
		return Position{}
	}
	return Position{Line: intField(node, "line"), Column: intField(node, "column")}
}

func intField(node map[string]any, key string) int {
	num, _ := node[key].(json.Number)
	value, _ := num.Int64()
	return int(value)
}
