package extract

const compiledNode = `"use strict";
Object.defineProperty(exports, "__esModule", { value: true });
exports.Demo = void 0;
const descriptions_1 = require("./descriptions/ContactDescription");
class Demo {
    constructor() {
        this.description = {
            displayName: 'Demo',
            name: 'demo',
            icon: 'file:demo.svg',
            group: ['transform'],
            version: 1,
            subtitle: '={{$parameter["operation"]}}',
            description: 'Consume the Demo API',
            defaults: { name: 'Demo' },
            inputs: ['main'],
            outputs: ['main'],
            credentials: [{ name: 'demoApi', required: true }],
            properties: [
                // Top-level resource selector.
                {
                    displayName: 'Resource',
                    name: 'resource',
                    type: 'options',
                    noDataExpression: true,
                    options: [
                        { name: 'Contact', value: 'contact' },
                    ],
                    default: 'contact',
                },
                ...descriptions_1.contactOperations,
            ],
        };
    }
    async execute() {
        return [[]];
    }
}
exports.Demo = Demo;
`

const descriptionModule = `"use strict";
Object.defineProperty(exports, "__esModule", { value: true });
exports.contactOperations = [
    {
        displayName: 'Operation',
        name: 'operation',
        type: 'options',
        default: 'get',
        options: [
            { name: 'Get', value: 'get', description: 'Get a contact' },
        ],
    },
];
`

const typescriptNode = `import { INodeType, INodeTypeDescription, NodeConnectionType } from 'n8n-workflow';

export class DemoTs implements INodeType {
	description: INodeTypeDescription = {
		displayName: 'Demo TS',
		name: 'demoTs',
		group: ['output'],
		version: [1, 2],
		description: "Send {data} somewhere",
		inputs: [NodeConnectionType.Main],
		outputs: [NodeConnectionType.Main],
		properties: [...localFields],
	};
}

const localFields = [
	{ displayName: 'Text', name: 'text', type: 'string', default: '', required: true },
];
`
