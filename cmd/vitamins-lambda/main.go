// Vitamin allocation endpoint served as an AWS Lambda function URL.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/vitamins"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

func handler(_ context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req automation.BestVitaminsRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if req.Pokemon != "" {
		return errResp(400, "pokemon lookups need a save, send base_attack and egg_cycles")
	}
	if req.Region == nil {
		return errResp(400, "missing region")
	}
	if *req.Region < automation.RegionKanto || *req.Region > automation.RegionPaldea {
		return errResp(400, fmt.Sprintf("region %d out of range", *req.Region))
	}
	if req.BaseAttack < 0 || req.EggCycles < 0 {
		return errResp(400, "base_attack and egg_cycles must not be negative")
	}

	tier := *req.Region
	resp := automation.BestVitaminsResponse{
		Region:     tier,
		Budget:     vitamins.Budget(tier),
		Allocation: vitamins.BestAllocation(req.BaseAttack, req.EggCycles, tier),
		Baseline:   vitamins.Efficiency(automation.Allocation{}, req.BaseAttack, req.EggCycles),
	}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
