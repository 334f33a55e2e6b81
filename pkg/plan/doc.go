/*
Package plan loads patch plans: the documents to edit and the operations to
run against each, declared in HCL, YAML or JSON.

	            +-------------+
	            |    Plan     |
	            | (documents) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+----+ +----+----+
	|   HCL    | |  YAML   | |  JSON   |
	|  Parser  | | Parser  | | Parser  |
	+----------+ +---------+ +---------+

🔄 Flow:
1. Read the plan file and pick a parser by extension
2. Decode (HCL plans may reference var.<name>)
3. Validate, filling defaults (operations are critical unless told otherwise)
4. Expand globs under a root into Targets of ready-to-run patch.Operations

🔍 Example:

	p, err := plan.Load(ctx, ".patchrc.hcl", plan.Options{
		Variables: map[string]string{"hook": "useAutoLogout"},
	})
	if err != nil {
		return err
	}
	targets, err := p.Targets(ctx, root)
*/
package plan
