package trade

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const quoterV2ABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "tokenIn", "type": "address"},
          {"internalType": "address", "name": "tokenOut", "type": "address"},
          {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
        ],
        "internalType": "struct IQuoterV2.QuoteExactInputSingleParams",
        "name": "params",
        "type": "tuple"
      }
    ],
    "name": "quoteExactInputSingle",
    "outputs": [
      {"internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"internalType": "uint160", "name": "sqrtPriceX96After", "type": "uint160"},
      {"internalType": "uint32", "name": "initializedTicksCrossed", "type": "uint32"},
      {"internalType": "uint256", "name": "gasEstimate", "type": "uint256"}
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const swapRouterABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "tokenIn", "type": "address"},
          {"internalType": "address", "name": "tokenOut", "type": "address"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "address", "name": "recipient", "type": "address"},
          {"internalType": "uint256", "name": "deadline", "type": "uint256"},
          {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "amountOutMinimum", "type": "uint256"},
          {"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
        ],
        "internalType": "struct ISwapRouter.ExactInputSingleParams",
        "name": "params",
        "type": "tuple"
      }
    ],
    "name": "exactInputSingle",
    "outputs": [{"internalType": "uint256", "name": "amountOut", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	quoterV2ABI     abi.ABI
	quoterV2ABIOnce sync.Once
	quoterV2ABIErr  error

	swapRouterABI     abi.ABI
	swapRouterABIOnce sync.Once
	swapRouterABIErr  error
)

// QuoterV2ABI returns the parsed QuoterV2 ABI.
func QuoterV2ABI() (abi.ABI, error) {
	quoterV2ABIOnce.Do(func() {
		quoterV2ABI, quoterV2ABIErr = abi.JSON(strings.NewReader(quoterV2ABIJSON))
	})
	return quoterV2ABI, quoterV2ABIErr
}

// SwapRouterABI returns the parsed swap router ABI.
func SwapRouterABI() (abi.ABI, error) {
	swapRouterABIOnce.Do(func() {
		swapRouterABI, swapRouterABIErr = abi.JSON(strings.NewReader(swapRouterABIJSON))
	})
	return swapRouterABI, swapRouterABIErr
}
